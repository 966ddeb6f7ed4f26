package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"qrscanner/internal/contextutil"
	"qrscanner/internal/service"
	"qrscanner/internal/urlinfo"
)

// ScanPageHandler serves one stored scan as an HTML page.
type ScanPageHandler struct {
	historyService service.HistoryService
	markdown       goldmark.Markdown
	template       *template.Template
}

// scanPageData holds template data for rendered scan pages.
type scanPageData struct {
	ID          int64
	Content     string
	Type        string
	ProductInfo string
	Timestamp   string
	IsURL       bool
	Description template.HTML
}

var scanPageTemplate = template.Must(template.New("scan").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Scan #{{.ID}} - {{.Type}}</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
      margin: 0 auto;
      padding: 2rem;
      max-width: 760px;
      line-height: 1.6;
      background: #f8fafc;
      color: #0f172a;
    }
    header {
      border-bottom: 1px solid #cbd5e1;
      padding-bottom: 1rem;
      margin-bottom: 1.5rem;
    }
    h1 {
      margin: 0;
      font-size: 1.5rem;
      word-break: break-all;
    }
    .meta {
      color: #64748b;
      font-size: 0.9rem;
    }
    .product {
      background: #e2e8f0;
      border-radius: 8px;
      padding: 0.75rem 1rem;
    }
    article {
      background: #fff;
      border: 1px solid #e2e8f0;
      border-radius: 12px;
      padding: 1.5rem;
    }
    code {
      font-family: 'SFMono-Regular', Consolas, Menlo, monospace;
      background: #f1f5f9;
      padding: 2px 4px;
      border-radius: 4px;
    }
  </style>
</head>
<body>
  <header>
    <h1>{{if .IsURL}}<a href="{{.Content}}" rel="noopener noreferrer">{{.Content}}</a>{{else}}{{.Content}}{{end}}</h1>
    <p class="meta">{{.Type}} &middot; {{.Timestamp}}</p>
  </header>
  <p class="product">{{.ProductInfo}}</p>
  <article>{{.Description}}</article>
</body>
</html>`))

// NewScanPageHandler creates a new ScanPageHandler.
func NewScanPageHandler(historyService service.HistoryService) *ScanPageHandler {
	return &ScanPageHandler{
		historyService: historyService,
		markdown: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Typographer,
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
		template: scanPageTemplate,
	}
}

// ServeHTTP handles GET /history/{id}. Descriptions are rendered from markdown.
func (h *ScanPageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	rec, err := h.historyService.Get(ctx, id)
	if err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.Is(err, service.ErrNotFound):
			http.Error(w, "scan not found", http.StatusNotFound)
		case errors.As(err, &validationErr):
			http.Error(w, "invalid scan id", http.StatusBadRequest)
		default:
			logger.ErrorContext(ctx, "failed to load scan", "id", id, "error", err)
			http.Error(w, "failed to load scan", http.StatusInternalServerError)
		}
		return
	}

	description, err := h.renderMarkdown([]byte(rec.Description))
	if err != nil {
		logger.ErrorContext(ctx, "failed to render markdown", "id", id, "error", err)
		http.Error(w, "failed to render scan", http.StatusInternalServerError)
		return
	}

	pageData := scanPageData{
		ID:          rec.ID,
		Content:     rec.Content,
		Type:        rec.Type,
		ProductInfo: rec.ProductInfo,
		Timestamp:   rec.Timestamp.Local().Format("2006-01-02 15:04:05"),
		IsURL:       urlinfo.IsWebURL(rec.Content),
		Description: template.HTML(description),
	}

	var buf bytes.Buffer
	if err := h.template.Execute(&buf, pageData); err != nil {
		logger.ErrorContext(ctx, "failed to execute scan template", "id", id, "error", err)
		http.Error(w, "failed to render scan", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (h *ScanPageHandler) renderMarkdown(content []byte) (string, error) {
	var buf bytes.Buffer
	if err := h.markdown.Convert(content, &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}
