package fiber_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idam-admin/idam/internal/logger"
	adapter "github.com/idam-admin/idam/internal/logger/adapter/fiber"
)

type accessLine struct {
	IP     string `json:"IP"`
	Status int    `json:"status"`
	URI    string `json:"URI"`
	Method string `json:"method"`
	Host   string `json:"host"`
	Error  string `json:"error"`
	Sub    string `json:"subject"`
}

var consoleJSON = logger.Log{
	EnableAccessLogToConsole: true,
	DisableCheckAlive:        true,
	Console:                  logger.Console{Enabled: true},
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		config     adapter.Config
		targetPath string
		want       *accessLine
	}{
		{
			name:       "no writer no output",
			targetPath: "/api/users",
		},
		{
			name:       "get users",
			config:     adapter.Config{Config: consoleJSON},
			targetPath: "/api/users",
			want:       &accessLine{IP: "0.0.0.0", Status: 200, URI: "/api/users", Method: fiber.MethodGet, Host: "example.com"},
		},
		{
			name:       "query string kept",
			config:     adapter.Config{Config: consoleJSON},
			targetPath: "/api/users?filter=jane",
			want:       &accessLine{IP: "0.0.0.0", Status: 200, URI: "/api/users?filter=jane", Method: fiber.MethodGet, Host: "example.com"},
		},
		{
			name:       "not found",
			config:     adapter.Config{Config: consoleJSON},
			targetPath: "/api//nothing",
			want: &accessLine{
				IP: "0.0.0.0", Status: 404, URI: "/api//nothing", Method: fiber.MethodGet, Host: "example.com",
				Error: "Cannot GET /api//nothing",
			},
		},
		{
			name:       "handler error rendered by error handler",
			config:     adapter.Config{Config: consoleJSON},
			targetPath: "/api/fail",
			want: &accessLine{
				IP: "0.0.0.0", Status: 409, URI: "/api/fail", Method: fiber.MethodGet, Host: "example.com",
				Error: "duplicate",
			},
		},
		{
			name:       "check alive skipped",
			config:     adapter.Config{Config: consoleJSON, CheckAliveURI: "/checkalive"},
			targetPath: "/checkalive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := runMiddleware(t, tt.targetPath, tt.config)

			if tt.want == nil {
				assert.Empty(t, output)

				return
			}

			var got accessLine
			require.NoError(t, json.Unmarshal([]byte(output), &got), output)

			assert.Equal(t, *tt.want, got)
		})
	}
}

func runMiddleware(t *testing.T, targetPath string, cfg adapter.Config) string {
	t.Helper()

	stdout := os.Stdout

	r, w, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout = w

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		Immutable:     true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.SendStatus(fe.Code)
			}

			return c.Status(fiber.StatusConflict).SendString(err.Error())
		},
	})

	app.Use(adapter.New(cfg))

	app.Get("/api/users", func(c *fiber.Ctx) error { return c.SendString("[]") })
	app.Get("/api/fail", func(*fiber.Ctx) error { return errors.New("duplicate") })
	app.Get("/checkalive", func(c *fiber.Ctx) error { return c.SendString("OK") })

	_, errTest := app.Test(httptest.NewRequest(fiber.MethodGet, targetPath, nil), -1)

	outC := make(chan string)

	go func() {
		var buf bytes.Buffer

		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	_ = w.Close()
	os.Stdout = stdout

	out := <-outC

	require.NoError(t, errTest)

	return out
}
