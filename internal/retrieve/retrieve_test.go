package retrieve

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/hukukpanel/kararfetch/internal/fetch"
	"github.com/hukukpanel/kararfetch/internal/normalize"
	"github.com/hukukpanel/kararfetch/internal/source"
)

type stubCall struct {
	url      string
	strategy fetch.Strategy
}

// stubFetcher serves canned responses and records the attempt order.
type stubFetcher struct {
	respond func(url string, strategy fetch.Strategy) (*fetch.Result, error)
	head    func(url string) (int, string, error)

	calls     []stubCall
	headCalls []string
}

func (s *stubFetcher) Do(_ context.Context, url string, strategy fetch.Strategy) (*fetch.Result, error) {
	s.calls = append(s.calls, stubCall{url: url, strategy: strategy})
	if s.respond == nil {
		return nil, errors.New("no response configured")
	}
	return s.respond(url, strategy)
}

func (s *stubFetcher) Head(_ context.Context, url string) (int, string, error) {
	s.headCalls = append(s.headCalls, url)
	if s.head == nil {
		return 0, "", errors.New("no head configured")
	}
	return s.head(url)
}

func newRetriever(f *stubFetcher) *Retriever {
	return &Retriever{Fetcher: f}
}

func firstURL(t *testing.T, sourceID, documentID string) string {
	t.Helper()
	info, err := source.Lookup(sourceID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	return info.Templates[0].URL(documentID)
}

const decisionHTML = `<html><body><div class="karar-metni">
Davacı vekili dava dilekçesinde alacağın faiziyle tahsilini talep etmiştir.
Mahkemece toplanan deliller ve bilirkişi raporu birlikte değerlendirilmiştir.
Bu gerekçelerle davanın kısmen kabulüne ve fazlaya dair istemin reddine karar verilmiştir.
</div></body></html>`

func TestRetrieve_AllAttemptsFailFallsBackToRedirect(t *testing.T) {
	f := &stubFetcher{respond: func(string, fetch.Strategy) (*fetch.Result, error) {
		return nil, errors.New("connection refused")
	}}
	out, err := newRetriever(f).Retrieve(context.Background(), "yargitay", "123", "")
	if err != nil {
		t.Fatalf("exhaustion must not be an error: %v", err)
	}
	if !out.Success {
		t.Fatalf("exhaustion outcome must still be actionable: %+v", out)
	}
	if out.ContentType != ContentTypeUnknown {
		t.Fatalf("got content type %q", out.ContentType)
	}
	if want := firstURL(t, "yargitay", "123"); out.RedirectURL != want {
		t.Fatalf("redirect %q, want first candidate %q", out.RedirectURL, want)
	}
	if out.ErrorInfo == "" {
		t.Fatalf("expected diagnostic error info")
	}
	info, _ := source.Lookup("yargitay")
	if want := len(info.Templates) * len(fetch.Strategies); len(f.calls) != want {
		t.Fatalf("expected %d attempts, got %d", want, len(f.calls))
	}
}

func TestRetrieve_PDFShortCircuits(t *testing.T) {
	f := &stubFetcher{respond: func(string, fetch.Strategy) (*fetch.Result, error) {
		return &fetch.Result{StatusCode: 200, ContentType: "application/pdf", Body: []byte("%PDF-1.4")}, nil
	}}
	out, err := newRetriever(f).Retrieve(context.Background(), "yargitay", "123", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ContentType != ContentTypePDF || !out.Success {
		t.Fatalf("expected pdf outcome, got %+v", out)
	}
	if want := firstURL(t, "yargitay", "123"); out.PDFURL != want {
		t.Fatalf("pdf url %q, want %q", out.PDFURL, want)
	}
	if out.ExtractionMethod != "pdf (plain)" {
		t.Fatalf("got method %q", out.ExtractionMethod)
	}
	if len(f.calls) != 1 {
		t.Fatalf("expected short circuit after 1 call, got %d", len(f.calls))
	}
}

func TestRetrieve_JSONAPIDecisionText(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("mahkeme kararının gerekçeli tam metni burada yer alır ", 6))
	body := fmt.Sprintf(`{"content": %q}`, long)
	f := &stubFetcher{respond: func(string, fetch.Strategy) (*fetch.Result, error) {
		return &fetch.Result{StatusCode: 200, ContentType: "application/json", Body: []byte(body)}, nil
	}}
	out, err := newRetriever(f).Retrieve(context.Background(), "yargitay", "123", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ContentType != ContentTypeText {
		t.Fatalf("got content type %q", out.ContentType)
	}
	if !strings.Contains(out.Content, "gerekçeli tam metni") {
		t.Fatalf("content lost: %q", out.Content)
	}
	if out.ExtractionMethod != "attempt 1 json-api field content (plain)" {
		t.Fatalf("got method %q", out.ExtractionMethod)
	}
}

func TestRetrieve_StopsAtFirstSuccess(t *testing.T) {
	info, _ := source.Lookup("yargitay")
	first := info.Templates[0].URL("123")
	second := info.Templates[1].URL("123")

	f := &stubFetcher{respond: func(url string, _ fetch.Strategy) (*fetch.Result, error) {
		if url == first {
			return nil, errors.New("not found")
		}
		return &fetch.Result{StatusCode: 200, ContentType: "text/html", Body: []byte(decisionHTML)}, nil
	}}
	out, err := newRetriever(f).Retrieve(context.Background(), "yargitay", "123", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.Content, "kısmen kabulüne") {
		t.Fatalf("content missing: %q", out.Content)
	}
	if out.SourceURL != second {
		t.Fatalf("source url %q, want %q", out.SourceURL, second)
	}
	if !strings.Contains(out.ExtractionMethod, "decision-containers") ||
		!strings.Contains(out.ExtractionMethod, "(plain)") {
		t.Fatalf("got method %q", out.ExtractionMethod)
	}
	// 3 failed strategies on the first candidate, then one hit.
	if len(f.calls) != 4 {
		t.Fatalf("expected 4 calls, got %d: %v", len(f.calls), f.calls)
	}
	if last := f.calls[len(f.calls)-1]; last.url != second || last.strategy != fetch.Plain {
		t.Fatalf("unexpected final attempt %+v", last)
	}
}

func TestRetrieve_DirectDocumentUsesRenderer(t *testing.T) {
	f := &stubFetcher{respond: func(string, fetch.Strategy) (*fetch.Result, error) {
		return &fetch.Result{StatusCode: 200, ContentType: "text/html", Body: []byte(decisionHTML)}, nil
	}}
	r := newRetriever(f)
	r.Renderer = normalize.PlainTextRenderer{}
	out, err := r.Retrieve(context.Background(), "danistay", "456", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ExtractionMethod != "attempt 1 direct-plaintext (plain)" {
		t.Fatalf("got method %q", out.ExtractionMethod)
	}
	if !strings.Contains(out.Content, "kısmen kabulüne") {
		t.Fatalf("content missing: %q", out.Content)
	}
}

func TestRetrieve_HintURLTriedFirst(t *testing.T) {
	hint := "https://ornek.gov.tr/karar/5"
	f := &stubFetcher{respond: func(string, fetch.Strategy) (*fetch.Result, error) {
		return nil, errors.New("down")
	}}
	out, err := newRetriever(f).Retrieve(context.Background(), "kik", "5", hint)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.calls[0].url != hint {
		t.Fatalf("first attempt %q, want hint %q", f.calls[0].url, hint)
	}
	if out.RedirectURL != hint {
		t.Fatalf("redirect %q, want hint %q", out.RedirectURL, hint)
	}
}

func TestRetrieve_InputErrors(t *testing.T) {
	r := newRetriever(&stubFetcher{})
	if _, err := r.Retrieve(context.Background(), "bilinmeyen", "1", ""); !errors.Is(err, source.ErrUnknownSource) {
		t.Fatalf("expected ErrUnknownSource, got %v", err)
	}
	if _, err := r.Retrieve(context.Background(), "yargitay", "   ", ""); !errors.Is(err, source.ErrEmptyDocumentID) {
		t.Fatalf("expected ErrEmptyDocumentID, got %v", err)
	}
}

func TestRetrieve_BudgetExhaustionSkipsAttempts(t *testing.T) {
	f := &stubFetcher{respond: func(string, fetch.Strategy) (*fetch.Result, error) {
		return nil, errors.New("down")
	}}
	r := newRetriever(f)
	r.Config.AttemptBudget = time.Nanosecond
	out, err := r.Retrieve(context.Background(), "rekabet", "9", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Success || out.RedirectURL == "" {
		t.Fatalf("expected redirect outcome, got %+v", out)
	}
	if len(f.calls) != 0 {
		t.Fatalf("expected no fetches after budget ran out, got %d", len(f.calls))
	}
}

func TestRetrieve_HeadPrecheckCatchesPDF(t *testing.T) {
	f := &stubFetcher{
		head: func(string) (int, string, error) { return 200, "application/pdf", nil },
	}
	r := newRetriever(f)
	r.Config.HeadPrecheck = true
	out, err := r.Retrieve(context.Background(), "anayasa", "7", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ContentType != ContentTypePDF {
		t.Fatalf("expected pdf, got %+v", out)
	}
	if len(f.calls) != 0 || len(f.headCalls) != 1 {
		t.Fatalf("expected 1 HEAD and no GET, got %d/%d", len(f.headCalls), len(f.calls))
	}
}

func TestRetrieve_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &stubFetcher{}
	if _, err := newRetriever(f).Retrieve(ctx, "yargitay", "1", ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}
