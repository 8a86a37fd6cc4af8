package source

import (
	"errors"
	"strings"
	"testing"
)

func TestLookup_NormalizesInput(t *testing.T) {
	info, err := Lookup("  YARGITAY ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.ID != Yargitay {
		t.Fatalf("got %q", info.ID)
	}
	if info.Name != "Yargıtay" {
		t.Fatalf("got %q", info.Name)
	}
}

func TestLookup_UnknownSource(t *testing.T) {
	_, err := Lookup("bilinmeyen-mahkeme")
	if !errors.Is(err, ErrUnknownSource) {
		t.Fatalf("expected ErrUnknownSource, got %v", err)
	}
}

func TestValidateDocumentID(t *testing.T) {
	if err := ValidateDocumentID("  "); !errors.Is(err, ErrEmptyDocumentID) {
		t.Fatalf("expected ErrEmptyDocumentID, got %v", err)
	}
	if err := ValidateDocumentID("2021/1234"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTemplateURL_EscapesDocumentID(t *testing.T) {
	tpl := Template{Pattern: "https://ornek.gov.tr/detay?id=%s"}
	got := tpl.URL("2021/123 K")
	want := "https://ornek.gov.tr/detay?id=2021%2F123+K"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestAll_FixedOrder(t *testing.T) {
	infos := All()
	if len(infos) != 7 {
		t.Fatalf("expected 7 portals, got %d", len(infos))
	}
	wantOrder := []ID{Yargitay, Danistay, Emsal, Anayasa, Uyusmazlik, KIK, Rekabet}
	for i, id := range wantOrder {
		if infos[i].ID != id {
			t.Fatalf("position %d: got %q, want %q", i, infos[i].ID, id)
		}
	}
}

func TestRegistry_TemplatesWellFormed(t *testing.T) {
	for _, info := range All() {
		if len(info.Templates) == 0 {
			t.Fatalf("%s has no templates", info.ID)
		}
		for _, tpl := range info.Templates {
			if strings.Count(tpl.Pattern, "%s") != 1 {
				t.Fatalf("%s template %q needs exactly one %%s verb", info.ID, tpl.Pattern)
			}
			if !strings.HasPrefix(tpl.Pattern, "https://") {
				t.Fatalf("%s template %q is not https", info.ID, tpl.Pattern)
			}
		}
	}
}

func TestRegistry_DirectDocumentEndpoints(t *testing.T) {
	danistay, _ := Lookup("danistay")
	if !danistay.Templates[0].Direct {
		t.Fatalf("danistay getDokuman endpoint should be direct")
	}
	emsal, _ := Lookup("emsal")
	var direct int
	for _, tpl := range emsal.Templates {
		if tpl.Direct {
			direct++
		}
	}
	if direct != 2 {
		t.Fatalf("emsal should have 2 direct endpoints, got %d", direct)
	}
	yargitay, _ := Lookup("yargitay")
	for _, tpl := range yargitay.Templates {
		if tpl.Direct {
			t.Fatalf("yargitay has no bare-document endpoint: %q", tpl.Pattern)
		}
	}
}
