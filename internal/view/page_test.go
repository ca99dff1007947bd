package view

import (
	"bytes"
	"strings"
	"testing"

	"rickshaw-client/internal/dto"
	"rickshaw-client/pkg/intake"
)

func render(t *testing.T, snap dto.SessionSnapshot) string {
	t.Helper()
	page, err := NewPage()
	if err != nil {
		t.Fatalf("NewPage() error = %v", err)
	}
	var buf bytes.Buffer
	if err := page.Render(&buf, snap); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return buf.String()
}

func TestRenderDataURIPreview(t *testing.T) {
	out := render(t, dto.SessionSnapshot{
		InputMode:    "upload",
		ImagePreview: "data:image/png;base64,YWJj",
		SubmitLabel:  "Analyze Image",
		CanSubmit:    true,
	})

	if !strings.Contains(out, `src="data:image/png;base64,YWJj"`) {
		t.Errorf("data URI preview was not rendered")
	}
}

func TestRenderRejectsScriptURL(t *testing.T) {
	out := render(t, dto.SessionSnapshot{InputMode: "url", ImagePreview: "javascript:alert(1)"})

	if strings.Contains(out, "javascript:alert") {
		t.Errorf("unsafe preview URL was rendered")
	}
}

func TestRenderLoadingDisablesSubmit(t *testing.T) {
	out := render(t, dto.SessionSnapshot{InputMode: "url", Loading: true, SubmitLabel: "Analyzing"})

	if !strings.Contains(out, `<button id="submit" type="button" disabled>Analyzing</button>`) {
		t.Errorf("submit button not disabled while loading")
	}
}

func TestRenderVerdictAndWarning(t *testing.T) {
	out := render(t, dto.SessionSnapshot{
		InputMode:     "url",
		ConfigWarning: "Configuration Required",
		CanSubmit:     true,
		Render: &dto.RenderModel{
			Kind:    "verdict",
			Verdict: &dto.VerdictView{Positive: true, Headline: "Rickshaw Detected!", Confidence: "97.5%"},
			Labels:  []dto.LabelView{{Name: "Rickshaw", Confidence: "97.5%"}, {Name: "Wheel"}},
		},
	})

	for _, want := range []string{"Configuration Required", "Rickshaw Detected!", "Confidence: 97.5%", "Rickshaw (97.5%)", "<span>Wheel</span>"} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestRenderChecksFileBeforeUpload(t *testing.T) {
	out := render(t, dto.SessionSnapshot{InputMode: "upload", SubmitLabel: "Analyze Image"})

	for _, want := range []string{
		`file.type.startsWith("image/")`,
		"file.size > maxImageSize",
		"const maxImageSize = 10 * 1024 * 1024;",
		intake.MsgSelectImage,
		intake.MsgImageTooBig,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("upload script missing %q", want)
		}
	}
}

func TestSubmitSendsTypedURL(t *testing.T) {
	out := render(t, dto.SessionSnapshot{InputMode: "url", SubmitLabel: "Analyze Image", CanSubmit: true})

	if !strings.Contains(out, `call("POST", "/session/submit", urlInput ? { image_url: urlInput.value } : undefined)`) {
		t.Errorf("submit does not carry the typed URL")
	}
	if !strings.Contains(out, "queue = queue.then(") {
		t.Errorf("requests are not serialized")
	}
}

func TestLiveEventsPatchInPlace(t *testing.T) {
	out := render(t, dto.SessionSnapshot{InputMode: "upload", SubmitLabel: "Analyze Image"})

	for _, want := range []string{
		`<p id="file-info" class="file-info" hidden>`,
		`<div id="preview" class="preview" hidden>`,
		`<p id="error" class="error" hidden>`,
		`<section id="result" class="result" hidden>`,
		"applySnapshot(event.data)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if n := strings.Count(out, "location.reload()"); n != 1 {
		t.Errorf("location.reload() appears %d times, want only the mode change", n)
	}
}

func TestRenderShowsError(t *testing.T) {
	out := render(t, dto.SessionSnapshot{InputMode: "url", Error: "Please enter an image URL"})

	if !strings.Contains(out, ">Please enter an image URL</p>") {
		t.Errorf("error message not rendered")
	}
	if strings.Contains(out, `<p id="error" class="error" hidden>`) {
		t.Errorf("error paragraph rendered hidden")
	}
}
