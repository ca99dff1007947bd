package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"rickshaw-client/internal/config"
	"rickshaw-client/internal/dto"
	"rickshaw-client/internal/mapper"
	"rickshaw-client/internal/pkg/logger"
	"rickshaw-client/internal/repository/memory"
	"rickshaw-client/internal/service"
	"rickshaw-client/pkg/detection"
	"rickshaw-client/pkg/intake"
	"rickshaw-client/pkg/state"
	"rickshaw-client/pkg/store"
	"rickshaw-client/pkg/verdict"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// analyze runs one detection cycle from the terminal:
//
//	go run ./cmd/analyze -url https://example.com/rickshaw.jpg
//	go run ./cmd/analyze -file ./rickshaw.png
func main() {
	imageURL := flag.String("url", "", "image URL to analyze")
	imagePath := flag.String("file", "", "local image file to analyze")
	flag.Parse()

	if (*imageURL == "") == (*imagePath == "") {
		color.Red("Provide exactly one of -url or -file")
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	if warning := cfg.Warning(); warning != "" {
		color.Yellow("⚠️  %s", warning)
	}

	sysLogger := logger.NewNopLogger()
	sessions := memory.NewSessionRepository(cfg.Session.TTL, cfg.Session.CleanupInterval)
	svc := service.NewSubmissionService(
		sessions,
		state.NewManager(sysLogger),
		intake.NewBase64Reader(),
		detection.NewClient(cfg.Detection.Endpoint, cfg.Detection.Timeout),
		nil,
		mapper.NewSessionMapper(cfg.Warning()),
		sysLogger,
	)

	ctx := context.Background()
	sessionID := uuid.New()
	svc.Open(ctx, sessionID)

	if err := prepare(ctx, svc, sessionID, *imageURL, *imagePath); err != nil {
		color.Red("❌ %v", err)
		os.Exit(1)
	}

	color.Cyan("🚀 Analyzing via %s", cfg.Detection.Endpoint)
	cycle, err := svc.Submit(ctx, sessionID)
	if err != nil {
		color.Red("❌ %v", err)
		os.Exit(1)
	}

	snap, err := cycle.Wait(ctx)
	if err != nil {
		color.Red("❌ %v", err)
		os.Exit(1)
	}

	if !printSnapshot(snap) {
		os.Exit(1)
	}
}

func prepare(ctx context.Context, svc service.ISubmissionService, sessionID uuid.UUID, imageURL, imagePath string) error {
	if imageURL != "" {
		_, err := svc.SetImageURL(ctx, sessionID, &dto.SetImageURLRequest{ImageURL: imageURL})
		return err
	}

	if _, err := svc.SwitchMode(ctx, sessionID, &dto.SwitchModeRequest{Mode: string(store.ModeUpload)}); err != nil {
		return err
	}

	f, err := os.Open(imagePath)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	mimeType, err := detectMimeType(f, imagePath)
	if err != nil {
		return fmt.Errorf("sniff %s: %w", imagePath, err)
	}

	snap, err := svc.SelectFile(ctx, sessionID, filepath.Base(imagePath), mimeType, info.Size(), f)
	if err != nil {
		return err
	}
	if snap.Error != "" {
		return fmt.Errorf("%s", snap.Error)
	}
	if snap.File != nil {
		color.Green("📎 %s", snap.File.Display)
	}
	return nil
}

// detectMimeType prefers the extension and falls back to sniffing the first bytes.
// ReadAt leaves the file offset where SelectFile expects it.
func detectMimeType(r io.ReaderAt, path string) (string, error) {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t, nil
	}
	head := make([]byte, 512)
	n, err := r.ReadAt(head, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}

// printSnapshot reports the settled cycle and whether it succeeded.
func printSnapshot(snap dto.SessionSnapshot) bool {
	if snap.Error != "" {
		color.Red("❌ %s", snap.Error)
		return false
	}

	render := snap.Render
	if render == nil {
		color.Yellow("No result")
		return false
	}

	switch render.Kind {
	case verdict.KindVerdict:
		if render.Verdict.Positive {
			color.Green("✅ %s", render.Verdict.Headline)
		} else {
			color.Red("❌ %s", render.Verdict.Headline)
		}
		if render.Verdict.Confidence != "" {
			fmt.Printf("   Confidence: %s\n", render.Verdict.Confidence)
		}
		if render.Verdict.Explanation != "" {
			fmt.Printf("   %s\n", render.Verdict.Explanation)
		}
	case verdict.KindText:
		color.Cyan("%s: %s", render.Text.Heading, render.Text.Value)
		if render.Text.Note != "" {
			fmt.Printf("   %s\n", render.Text.Note)
		}
	case verdict.KindFailure:
		color.Red("❌ %s", render.Failure.Message)
		return false
	default:
		if render.Notice != "" {
			color.Cyan("%s", render.Notice)
		}
	}

	for _, label := range render.Labels {
		if label.Confidence != "" {
			fmt.Printf("   • %s (%s)\n", label.Name, label.Confidence)
		} else {
			fmt.Printf("   • %s\n", label.Name)
		}
	}
	return true
}
