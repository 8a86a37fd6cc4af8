// Package source holds the fixed registry of judicial portals and their
// candidate document-URL templates. Templates are data, ordered from most to
// least likely to resolve, so the attempt budget stays auditable and testable
// without network access.
package source

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ID identifies a supported judicial portal.
type ID string

const (
	// Yargitay is the court of cassation decision search.
	Yargitay ID = "yargitay"
	// Danistay is the administrative high court decision search.
	Danistay ID = "danistay"
	// Emsal is the UYAP precedent database.
	Emsal ID = "emsal"
	// Anayasa is the constitutional court decision database.
	Anayasa ID = "anayasa"
	// Uyusmazlik is the jurisdictional dispute court.
	Uyusmazlik ID = "uyusmazlik"
	// KIK is the public procurement review board.
	KIK ID = "kik"
	// Rekabet is the competition authority.
	Rekabet ID = "rekabet"
)

var (
	// ErrUnknownSource is returned for a source ID outside the registry.
	ErrUnknownSource = errors.New("source: unknown source id")
	// ErrEmptyDocumentID is returned before any network activity when the
	// document identifier is missing.
	ErrEmptyDocumentID = errors.New("source: empty document id")
)

// Template is one candidate document URL pattern. The document ID is
// query-escaped and substituted for the single %s verb.
type Template struct {
	Pattern string
	// Direct marks endpoints that return the bare decision document
	// (UYAP getDokuman style) rather than a portal page. These are rendered
	// whole instead of going through the selector cascade first.
	Direct bool
}

// URL builds the concrete fetch target for a document ID.
func (t Template) URL(documentID string) string {
	return fmt.Sprintf(t.Pattern, url.QueryEscape(documentID))
}

// Info describes one portal.
type Info struct {
	ID        ID
	Name      string
	Templates []Template
}

// order matches the original integration's portal enumeration.
var order = []ID{Yargitay, Danistay, Emsal, Anayasa, Uyusmazlik, KIK, Rekabet}

var registry = map[ID]Info{
	Yargitay: {
		ID:   Yargitay,
		Name: "Yargıtay",
		Templates: []Template{
			{Pattern: "https://karararama.yargitay.gov.tr/YargitayBilgiBankasiIstemciWeb/pf/bilgi-bankasi-detay.xhtml?id=%s"},
			{Pattern: "https://karararama.yargitay.gov.tr/YargitayBilgiBankasiIstemciWeb/pf/detay.xhtml?id=%s"},
			{Pattern: "https://karararama.yargitay.gov.tr/detay/%s"},
			{Pattern: "https://www.yargitay.gov.tr/kategori/4/%s"},
			{Pattern: "https://karararama.yargitay.gov.tr/YargitayBilgiBankasiIstemciWeb/pf/karardetay.xhtml?id=%s"},
			{Pattern: "https://karararama.yargitay.gov.tr/api/karar/%s"},
			{Pattern: "https://karararama.yargitay.gov.tr/pdf/%s.pdf"},
		},
	},
	Danistay: {
		ID:   Danistay,
		Name: "Danıştay",
		Templates: []Template{
			{Pattern: "https://karararama.danistay.gov.tr/getDokuman?id=%s", Direct: true},
			{Pattern: "https://karararama.danistay.gov.tr/dokuman/%s", Direct: true},
			{Pattern: "https://www.danistay.gov.tr/Kararlar/DetayGoster/%s"},
			{Pattern: "https://karararama.danistay.gov.tr/detay?id=%s"},
			{Pattern: "https://karararama.danistay.gov.tr/karar/%s"},
		},
	},
	Emsal: {
		ID:   Emsal,
		Name: "UYAP Emsal",
		Templates: []Template{
			{Pattern: "https://emsal.uyap.gov.tr/getDokuman?id=%s", Direct: true},
			{Pattern: "https://emsal.uyap.gov.tr/BilgiBankasiIstemciWeb/getDokuman?id=%s", Direct: true},
			{Pattern: "https://emsal.uyap.gov.tr/BilgiBankasiIstemciWeb/pf/bilgi-bankasi-detay.xhtml?id=%s"},
			{Pattern: "https://emsal.uyap.gov.tr/BilgiBankasiIstemciWeb/pf/detay.xhtml?id=%s"},
			{Pattern: "https://emsal.uyap.gov.tr/BilgiBankasiIstemciWeb/pf/karardetay.xhtml?id=%s"},
			{Pattern: "https://emsal.uyap.gov.tr/BilgiBankasiIstemciWeb/pf/karar-detay.xhtml?kararId=%s"},
			{Pattern: "https://emsal.uyap.gov.tr/detay/%s"},
			{Pattern: "https://www.uyap.gov.tr/emsal/detay/%s"},
			{Pattern: "https://emsal.uyap.gov.tr/BilgiBankasiIstemciWeb/karardetay.jsp?id=%s"},
			{Pattern: "https://emsal.uyap.gov.tr/api/karar/%s"},
		},
	},
	Anayasa: {
		ID:   Anayasa,
		Name: "Anayasa Mahkemesi",
		Templates: []Template{
			{Pattern: "https://normkararlarbilgibankasi.anayasa.gov.tr/Karar/Goster/%s"},
			{Pattern: "https://www.anayasa.gov.tr/icsayfalar/kararlar/kararlarbilgibankasi/karar_detay.html?id=%s"},
			{Pattern: "https://kararlarbilgibankasi.anayasa.gov.tr/detay/%s"},
			{Pattern: "https://www.anayasa.gov.tr/Kararlar/Detay/%s"},
		},
	},
	Uyusmazlik: {
		ID:   Uyusmazlik,
		Name: "Uyuşmazlık Mahkemesi",
		Templates: []Template{
			{Pattern: "https://kararlar.uyusmazlik.gov.tr/Karar/Detay/%s"},
			{Pattern: "https://www.uyusmazlik.gov.tr/Kararlar/Detay/%s"},
			{Pattern: "https://kararlar.uyusmazlik.gov.tr/detay/%s"},
			{Pattern: "https://www.uyusmazlik.gov.tr/karar/%s"},
			{Pattern: "https://kararlar.uyusmazlik.gov.tr/api/karar/%s"},
		},
	},
	KIK: {
		ID:   KIK,
		Name: "Kamu İhale Kurumu",
		Templates: []Template{
			{Pattern: "https://www.kik.gov.tr/Kararlar/Detay/%s"},
			{Pattern: "https://kik.gov.tr/Kararlar/Detay/%s"},
			{Pattern: "https://www.kik.gov.tr/karar/%s"},
			{Pattern: "https://kik.gov.tr/karar/%s"},
			{Pattern: "https://www.kik.gov.tr/api/karar/%s"},
		},
	},
	Rekabet: {
		ID:   Rekabet,
		Name: "Rekabet Kurumu",
		Templates: []Template{
			{Pattern: "https://www.rekabet.gov.tr/Karar?kararId=%s"},
			{Pattern: "https://www.rekabet.gov.tr/Karar/Detay/%s"},
			{Pattern: "https://rekabet.gov.tr/Karar/Detay/%s"},
			{Pattern: "https://www.rekabet.gov.tr/karar/%s"},
			{Pattern: "https://www.rekabet.gov.tr/api/karar/%s"},
		},
	},
}

// Lookup resolves a source ID string. Unknown IDs are an input error, not a
// fetch failure.
func Lookup(id string) (Info, error) {
	info, ok := registry[ID(strings.TrimSpace(strings.ToLower(id)))]
	if !ok {
		return Info{}, fmt.Errorf("%w: %q", ErrUnknownSource, id)
	}
	return info, nil
}

// All returns the portals in their fixed enumeration order.
func All() []Info {
	out := make([]Info, 0, len(order))
	for _, id := range order {
		out = append(out, registry[id])
	}
	return out
}

// ValidateDocumentID rejects structurally unusable identifiers before any
// network activity.
func ValidateDocumentID(documentID string) error {
	if strings.TrimSpace(documentID) == "" {
		return ErrEmptyDocumentID
	}
	return nil
}
