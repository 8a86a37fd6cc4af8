package extract

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

const decisionSentence = "Mahkemece toplanan deliller değerlendirilerek davanın kısmen kabulüne karar verilmiştir. "

func decisionText(n int) string {
	return strings.TrimSpace(strings.Repeat(decisionSentence, n))
}

func TestExtract_DecisionContainer(t *testing.T) {
	html := fmt.Sprintf(`<html><body>
		<nav>Ana Sayfa Menü Giriş</nav>
		<div class="page"><div class="karar-metni">%s</div></div>
		<footer>Telif hakları saklıdır</footer>
	</body></html>`, decisionText(8))

	e := &Extractor{}
	got := e.Extract(context.Background(), "https://ornek.gov.tr/detay?id=1", []byte(html))
	if got.Source != "decision-containers div.karar-metni" {
		t.Fatalf("unexpected source %q", got.Source)
	}
	if !strings.Contains(got.Text, "kısmen kabulüne") {
		t.Fatalf("decision text missing: %q", got.Text)
	}
	if strings.Contains(got.Text, "Ana Sayfa") || strings.Contains(got.Text, "Telif") {
		t.Fatalf("navigation chrome leaked: %q", got.Text)
	}
}

func TestExtract_LongerCandidateWins(t *testing.T) {
	short := decisionText(2)
	long := decisionText(16)
	html := fmt.Sprintf(`<html><body>
		<div class="ui-panel-content">%s</div>
		<div class="karar-metni">%s</div>
	</body></html>`, long, short)

	e := &Extractor{}
	got := e.Extract(context.Background(), "https://ornek.gov.tr/detay?id=1", []byte(html))
	if !strings.Contains(got.Source, "ui-panel-content") {
		t.Fatalf("expected the longer panel to win, got %q", got.Source)
	}
	if len(got.Text) <= len(short) {
		t.Fatalf("best shrank: %d <= %d", len(got.Text), len(short))
	}
}

func TestExtract_ShortBlocksWithoutKeywordsIgnored(t *testing.T) {
	html := `<html><body><div class="karar-metni">hava durumu bugün güneşli ve açık olacak gibi görünüyor</div></body></html>`
	e := &Extractor{}
	got := e.Extract(context.Background(), "https://ornek.gov.tr/x", []byte(html))
	if strings.HasPrefix(got.Source, "decision-containers") {
		t.Fatalf("short non-legal block should not score: %q", got.Source)
	}
}

func TestExtract_BodyFallback(t *testing.T) {
	html := `<html><body>
		<p>Davacı vekili dilekçesinde alacağın tahsilini talep etmiştir</p>
		<p>Davalı taraf borcun zamanaşımına uğradığını savunmuştur</p>
		<p>Toplanan deliller ve bilirkişi raporu birlikte incelenmiştir</p>
		<p>Bilirkişi raporunda alacağın kısmen yerinde olduğu belirtilmiştir</p>
		<p>Bu nedenlerle davanın kısmen kabulüne karar vermek gerekmiştir</p>
		<p>Kararın tebliğinden itibaren iki hafta içinde istinaf yolu açıktır</p>
	</body></html>`

	e := &Extractor{}
	got := e.Extract(context.Background(), "https://ornek.gov.tr/x", []byte(html))
	if got.Source != "body-fallback" {
		t.Fatalf("expected body fallback, got %q", got.Source)
	}
	if n := strings.Count(got.Text, "\n"); n != 5 {
		t.Fatalf("expected 6 kept lines, got %d separators: %q", n, got.Text)
	}
}

func TestExtract_FollowsFrames(t *testing.T) {
	var fetched []string
	frameHTML := fmt.Sprintf(`<html><body><div>%s</div></body></html>`, decisionText(10))
	e := &Extractor{
		FetchFrame: func(_ context.Context, u string) ([]byte, error) {
			fetched = append(fetched, u)
			return []byte(frameHTML), nil
		},
	}

	host := `<html><body>
		<div class="karar-metni">kısa özet</div>
		<iframe src="/getDokuman?id=42"></iframe>
	</body></html>`
	got := e.Extract(context.Background(), "https://emsal.uyap.gov.tr/detay?id=42", []byte(host))

	want := "https://emsal.uyap.gov.tr/getDokuman?id=42"
	if len(fetched) != 1 || fetched[0] != want {
		t.Fatalf("frame fetch urls: %v, want [%s]", fetched, want)
	}
	if got.Source != "iframe "+want {
		t.Fatalf("unexpected source %q", got.Source)
	}
	if !strings.Contains(got.Text, "kısmen kabulüne") {
		t.Fatalf("frame text missing: %q", got.Text)
	}
}

func TestExtract_FrameCap(t *testing.T) {
	var calls int
	e := &Extractor{
		Config: Config{MaxFrames: 1},
		FetchFrame: func(_ context.Context, _ string) ([]byte, error) {
			calls++
			return []byte("<html><body></body></html>"), nil
		},
	}
	host := `<html><body>
		<iframe src="/a"></iframe>
		<iframe src="/b"></iframe>
	</body></html>`
	e.Extract(context.Background(), "https://ornek.gov.tr/x", []byte(host))
	if calls != 1 {
		t.Fatalf("expected 1 frame fetch, got %d", calls)
	}
}

func TestExtract_EmptyDocument(t *testing.T) {
	e := &Extractor{}
	got := e.Extract(context.Background(), "https://ornek.gov.tr/x", nil)
	if got.Text != "" || got.Source != "" {
		t.Fatalf("expected zero candidate, got %+v", got)
	}
}
