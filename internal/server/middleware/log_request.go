package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

type (
	LogRequestConfig struct {
		Logger  Logger
		Skipper Skipper
		// Bodies reports whether JSON request and response bodies are logged.
		Bodies func(c echo.Context) bool
	}
	bodyDumpWriter struct {
		io.Writer
		http.ResponseWriter
	}
)

// loggedFormFields are the form fields of a storefront action worth logging.
var loggedFormFields = []string{"action", "id", "redirect_to", "search"}

// LogRequest logs one line per request, at error level for 5xx, warn for
// 4xx and info otherwise.
func LogRequest(config LogRequestConfig) echo.MiddlewareFunc {
	if config.Logger == nil {
		panic("Logger is required to use LogRequest")
	}
	if config.Skipper == nil {
		config.Skipper = DefaultSkipper
	}
	if config.Bodies == nil {
		config.Bodies = func(echo.Context) bool { return false }
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}

			start := time.Now()
			req := c.Request()
			res := c.Response()
			logBodies := config.Bodies(c)

			var reqBody json.RawMessage
			var resBuf bytes.Buffer
			if logBodies {
				if isJSON(req.Header.Get(echo.HeaderContentType)) {
					reqBody, _ = io.ReadAll(req.Body)
					req.Body = io.NopCloser(bytes.NewReader(reqBody))
				}
				res.Writer = &bodyDumpWriter{Writer: io.MultiWriter(res.Writer, &resBuf), ResponseWriter: res.Writer}
			}

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			args := []interface{}{
				"status", res.Status,
				"method", req.Method,
				"uri", req.RequestURI,
				"route", c.Path(),
				"latency_ms", time.Since(start).Milliseconds(),
				"real_ip", c.RealIP(),
				"user_agent", req.UserAgent(),
			}
			if id := GetRequestID(c); id != "" {
				args = append(args, "request_id", id)
			}
			if id := GetShopperID(c); id != "" {
				args = append(args, "shopper_id", id)
			}
			if form := actionForm(req); len(form) > 0 {
				args = append(args, "form", form)
			}
			if logBodies {
				if len(reqBody) > 0 {
					args = append(args, "request_body", reqBody)
				}
				if isJSON(res.Header().Get(echo.HeaderContentType)) && resBuf.Len() > 0 {
					args = append(args, "response_body", json.RawMessage(resBuf.Bytes()))
				}
			}

			switch {
			case res.Status >= 500:
				if err != nil {
					args = append(args, "error", err.Error())
				}
				config.Logger.Errorw("http request", args...)
			case res.Status >= 400:
				config.Logger.Warnw("http request", args...)
			default:
				config.Logger.Infow("http request", args...)
			}
			return err
		}
	}
}

func isJSON(contentType string) bool {
	return strings.HasPrefix(contentType, echo.MIMEApplicationJSON)
}

// actionForm picks the logged fields of an already parsed form body.
func actionForm(req *http.Request) map[string]string {
	if len(req.PostForm) == 0 {
		return nil
	}
	form := make(map[string]string)
	for _, name := range loggedFormFields {
		if v := req.PostForm.Get(name); v != "" {
			form[name] = v
		}
	}
	return form
}

func (w *bodyDumpWriter) WriteHeader(code int) {
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyDumpWriter) Write(b []byte) (int, error) {
	return w.Writer.Write(b)
}

func (w *bodyDumpWriter) Flush() {
	w.ResponseWriter.(http.Flusher).Flush()
}

func (w *bodyDumpWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.ResponseWriter.(http.Hijacker).Hijack()
}
