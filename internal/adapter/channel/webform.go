package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"sourcehound/internal/domain"
	"sourcehound/internal/infra/middleware"
)

// Runner runs the source-discovery pipeline for one piece of text.
type Runner interface {
	Run(ctx context.Context, rawText, caption string, notify func(string)) domain.Outcome
}

// WebFormChannel serves a minimal HTML form plus a JSON API. Unlike the
// Telegram channel it returns results synchronously in the HTTP response,
// so Send is a no-op.
type WebFormChannel struct {
	server *http.Server
	logger *slog.Logger
	addr   string
	runner Runner

	// Actual bound address (set after Start)
	boundAddr string

	// Lifecycle management for rate limiter cleanup goroutine
	ctx    context.Context
	cancel context.CancelFunc
}

type checkRequest struct {
	Text string `json:"text"`
}

type checkResponse struct {
	Success bool                  `json:"success"`
	Results []domain.ScoredResult `json:"results,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// NewWebFormChannel creates the web form channel.
func NewWebFormChannel(addr string, runner Runner, logger *slog.Logger) *WebFormChannel {
	return &WebFormChannel{
		addr:   addr,
		runner: runner,
		logger: logger,
	}
}

// Start begins the HTTP server. Non-blocking (starts in goroutine).
func (c *WebFormChannel) Start(ctx context.Context, _ domain.MessageHandler) error {
	// Create cancellable context for rate limiter lifecycle management
	c.ctx, c.cancel = context.WithCancel(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/", c.handleIndex)
	mux.HandleFunc("/api/v1/check", c.handleCheck)
	mux.HandleFunc("/api/v1/health", c.handleHealth)

	// Rate limit: 60 requests/minute with burst of 10
	secureHandler := middleware.SecurityHeaders(
		middleware.RateLimit(c.ctx, 60, 10)(mux),
	)

	c.server = &http.Server{
		Addr:              c.addr,
		Handler:           secureHandler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	ln, err := net.Listen("tcp", c.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", c.addr, err)
	}
	c.boundAddr = ln.Addr().String()

	go func() {
		c.logger.Info("webform channel started", "addr", c.boundAddr)
		if err := c.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			c.logger.Error("webform server error", "error", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server.
func (c *WebFormChannel) Stop(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}

	if c.server == nil {
		return nil
	}
	return c.server.Shutdown(ctx)
}

// Send is a no-op: responses are returned synchronously in handleCheck.
func (c *WebFormChannel) Send(_ context.Context, _ domain.OutboundMessage) error { return nil }

// Name implements domain.Channel.
func (c *WebFormChannel) Name() string { return "webform" }

// BoundAddr returns the actual listen address, available after Start.
func (c *WebFormChannel) BoundAddr() string { return c.boundAddr }

func (c *WebFormChannel) handleCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	// Limit request body to 1MB to prevent DoS
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errMsg := "invalid JSON: " + err.Error()
		if err.Error() == "http: request body too large" {
			errMsg = "request body too large (max 1MB)"
		}
		writeJSON(w, http.StatusBadRequest, checkResponse{Error: errMsg})
		return
	}

	outcome := c.runner.Run(r.Context(), req.Text, "", nil)

	status := statusFor(outcome.Kind)
	resp := checkResponse{Success: outcome.Kind == domain.OutcomeSuccess}
	if resp.Success {
		resp.Results = outcome.Results
	} else {
		resp.Error = errorMessageFor(outcome)
	}
	writeJSON(w, status, resp)
}

// statusFor maps a pipeline outcome to an HTTP status code.
func statusFor(kind domain.OutcomeKind) int {
	switch kind {
	case domain.OutcomeSuccess:
		return http.StatusOK
	case domain.OutcomeEmptyInput:
		return http.StatusBadRequest
	case domain.OutcomeNoSources, domain.OutcomeNoRelevantSources:
		return http.StatusNotFound
	default: // search provider error, unexpected error
		return http.StatusInternalServerError
	}
}

// errorMessageFor renders a non-success outcome as a user-facing error string.
func errorMessageFor(o domain.Outcome) string {
	switch o.Kind {
	case domain.OutcomeEmptyInput:
		return "text is required"
	case domain.OutcomeNoSources:
		return "no sources found"
	case domain.OutcomeNoRelevantSources:
		return "no relevant sources found"
	case domain.OutcomeSearchError:
		return "search provider error"
	default:
		return "unexpected error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (c *WebFormChannel) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (c *WebFormChannel) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Source Check</title>
<style>
body { font-family: sans-serif; max-width: 42rem; margin: 2rem auto; padding: 0 1rem; }
textarea { width: 100%; height: 8rem; }
.result { border: 1px solid #ccc; border-radius: 4px; padding: .6rem; margin: .6rem 0; }
.err { color: #a00; }
</style>
</head>
<body>
<h1>Source Check</h1>
<p>Paste a claim or news snippet and get the most relevant original sources.</p>
<textarea id="text" placeholder="Paste text here..."></textarea>
<p><button id="go">Check sources</button></p>
<div id="out"></div>
<script>
document.getElementById('go').addEventListener('click', async () => {
  const out = document.getElementById('out');
  out.textContent = 'Searching...';
  try {
    const resp = await fetch('/api/v1/check', {
      method: 'POST',
      headers: {'Content-Type': 'application/json'},
      body: JSON.stringify({text: document.getElementById('text').value})
    });
    const data = await resp.json();
    if (!data.success) {
      out.innerHTML = '<p class="err"></p>';
      out.firstChild.textContent = data.error || 'request failed';
      return;
    }
    out.innerHTML = '';
    data.results.forEach((r, i) => {
      const div = document.createElement('div');
      div.className = 'result';
      const a = document.createElement('a');
      a.href = r.link;
      a.textContent = (i + 1) + '. ' + r.title;
      const p = document.createElement('p');
      p.textContent = 'Confidence ' + r.confidence + (r.explanation ? ': ' + r.explanation : '');
      div.append(a, p);
      out.append(div);
    });
  } catch (e) {
    out.innerHTML = '<p class="err">request failed</p>';
  }
});
</script>
</body>
</html>
`

// Compile-time interface check.
var _ domain.Channel = (*WebFormChannel)(nil)
