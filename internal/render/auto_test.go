// internal/render/auto_test.go
package render

import (
	"errors"
	"testing"

	"github.com/court-tools/rankpull/pkg/models"
)

type stubRenderer struct {
	name  string
	data  *models.PageData
	err   error
	calls int
}

func (s *stubRenderer) Fetch(opts models.RequestOptions) (*models.PageData, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}

func (s *stubRenderer) Name() string { return s.name }

func pageWith(html string, tables int) *models.PageData {
	return &models.PageData{
		URL:        "https://rankings.example.org/adult",
		StatusCode: 200,
		HTML:       html,
		TableCount: tables,
	}
}

func TestAutoKeepsStaticResultWithTable(t *testing.T) {
	static := &stubRenderer{name: "static", data: pageWith("<table><tr><td>1</td></tr></table>", 1)}
	browser := &stubRenderer{name: "spa", data: pageWith("<p>rendered</p>", 0)}

	data, err := NewAuto(static, browser).Fetch(models.RequestOptions{URL: static.data.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data != static.data {
		t.Error("expected the static result to be kept")
	}
	if browser.calls != 0 {
		t.Errorf("browser should not have been used, got %d calls", browser.calls)
	}
}

func TestAutoEscalatesScriptAssembledPage(t *testing.T) {
	shell := `<html><body><div id="app" data-reactroot=""></div><script src="/main.js"></script></body></html>`
	static := &stubRenderer{name: "static", data: pageWith(shell, 0)}
	browser := &stubRenderer{name: "spa", data: pageWith("<table><tr><td>Ana</td></tr></table>", 1)}

	data, err := NewAuto(static, browser).Fetch(models.RequestOptions{URL: static.data.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data != browser.data {
		t.Error("expected the browser render to win")
	}
	if browser.calls != 1 {
		t.Errorf("expected exactly one browser render, got %d", browser.calls)
	}
}

func TestAutoStaticFailureFallsBackToBrowser(t *testing.T) {
	static := &stubRenderer{name: "static", err: errors.New("connection refused")}
	browser := &stubRenderer{name: "spa", data: pageWith("<table></table>", 1)}

	data, err := NewAuto(static, browser).Fetch(models.RequestOptions{URL: "https://rankings.example.org"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data != browser.data {
		t.Error("expected the browser result after a static failure")
	}
}

func TestAutoBrowserFailureKeepsStaticResult(t *testing.T) {
	shell := `<html><body><div id="app" data-reactroot=""></div><script src="/main.js"></script></body></html>`
	static := &stubRenderer{name: "static", data: pageWith(shell, 0)}
	browser := &stubRenderer{name: "spa", err: errors.New("no browser available")}

	data, err := NewAuto(static, browser).Fetch(models.RequestOptions{URL: static.data.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data != static.data {
		t.Error("expected the static result to survive a failed browser render")
	}
}
