package service

import (
	"testing"

	"github.com/rebertiger/student-chat/internal/models"
)

func strp(s string) *string { return &s }

func TestHistoryLimit(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		want      int
	}{
		{"no limit falls back to the cap", 0, maxHistoryLimit},
		{"negative falls back to the cap", -1, maxHistoryLimit},
		{"explicit limit honored", 50, 50},
		{"cap itself honored", maxHistoryLimit, maxHistoryLimit},
		{"over the cap clamped", maxHistoryLimit + 1, maxHistoryLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := historyLimit(tt.requested); got != tt.want {
				t.Errorf("historyLimit(%d) = %d, want %d", tt.requested, got, tt.want)
			}
		})
	}
}

func TestValidateContent(t *testing.T) {
	tests := []struct {
		name    string
		msgType string
		text    *string
		fileURL *string
		wantErr bool
	}{
		{"text with text", models.MessageTypeText, strp("hi"), nil, false},
		{"text with empty text", models.MessageTypeText, strp(""), nil, true},
		{"text without text", models.MessageTypeText, nil, nil, true},
		{"text ignores file url alone", models.MessageTypeText, nil, strp("/uploads/x.pdf"), true},
		{"image with file url", models.MessageTypeImage, nil, strp("/uploads/a.png"), false},
		{"image without file url", models.MessageTypeImage, strp("caption"), nil, true},
		{"pdf with file url", models.MessageTypePDF, strp("doc.pdf"), strp("/uploads/doc.pdf"), false},
		{"pdf with empty file url", models.MessageTypePDF, nil, strp(""), true},
		{"generic file with url", models.MessageTypeFile, nil, strp("/uploads/data.zip"), false},
		{"unknown type", "video", nil, strp("/uploads/clip.mp4"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContent(tt.msgType, tt.text, tt.fileURL)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateContent() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
