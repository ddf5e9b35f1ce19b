package main

import (
	"errors"
	"flag"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"reader-mcp/mcp"
	"reader-mcp/reader"
)

func main() {
	// Define command line flags
	stdioMode := flag.Bool("stdio", true, "Run in stdio mode")
	httpAddr := flag.String("http", "", "HTTP server address (e.g., ':8080')")
	sseAddr := flag.String("sse", "", "SSE server address (e.g., ':8081')")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	cfg, err := loadConfig()
	if err != nil {
		logger.Fatal("configuration error", zap.Error(err))
	}

	client, err := reader.New(cfg, nil, logger)
	if err != nil {
		logger.Fatal("cannot create Reader API client", zap.Error(err))
	}

	s := mcp.NewServer(logger, client, mcp.Options{MaxDocuments: maxDocumentsFromEnv(logger)})

	if *httpAddr != "" {
		// Start the HTTP server
		logger.Info("starting MCP server", zap.String("http", *httpAddr))
		if err := mcp.NewHTTPServer(s, "/mcp").Start(*httpAddr); err != nil {
			logger.Fatal("http server failed", zap.Error(err))
		}
		os.Exit(0)
	}
	if *sseAddr != "" {
		// Start the SSE server
		logger.Info("starting MCP server", zap.String("sse", *sseAddr))
		if err := mcp.NewSSEServer(s).Start(*sseAddr); err != nil {
			logger.Fatal("sse server failed", zap.Error(err))
		}
		os.Exit(0)
	}
	// Start the stdio server
	if *stdioMode {
		logger.Info("starting MCP server in stdio mode")
	} else {
		logger.Info("starting MCP server in stdio mode (default)")
	}
	if err := server.ServeStdio(s); err != nil {
		logger.Fatal("stdio server failed", zap.Error(err))
	}
}

// loadConfig reads the Reader API credential from the environment, with a
// .env file as fallback. The process refuses to start without a token.
func loadConfig() (reader.Config, error) {
	godotenv.Load()

	token := os.Getenv("ACCESS_TOKEN")
	if token == "" {
		return reader.Config{}, errors.New("ACCESS_TOKEN environment variable is not set")
	}
	return reader.Config{
		AccessToken: token,
		BaseURL:     os.Getenv("READER_API_BASE_URL"),
	}, nil
}

func maxDocumentsFromEnv(logger *zap.Logger) int {
	value := os.Getenv("READER_MAX_DOCUMENTS")
	if value == "" {
		return 0
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		logger.Warn("ignoring invalid READER_MAX_DOCUMENTS", zap.String("value", value))
		return 0
	}
	return n
}
