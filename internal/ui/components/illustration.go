package components

import (
	"github.com/abhisek/cihui/internal/ui/theme"
)

// Illustration status lines.
const (
	MsgIllustrating  = "插圖產生中..."
	MsgIllustrateNA  = "未設定圖片產生服務"
	MsgIllustrateErr = "插圖產生失敗，按 i 重試"
)

// Illustration is the display state of one word's picture.
type Illustration struct {
	Loading bool
	Path    string
	Custom  bool
	Failed  bool
}

// Settled reports whether a picture is ready.
func (il Illustration) Settled() bool {
	return il.Path != ""
}

// IllustrationLine renders the status line shown under a word. available
// is false when no image service is configured.
func IllustrationLine(il Illustration, available bool) string {
	if !available {
		return theme.Hint.Render(MsgIllustrateNA)
	}
	switch {
	case il.Loading:
		return theme.Hint.Render(MsgIllustrating)
	case il.Failed:
		return theme.ErrorText.Render(MsgIllustrateErr)
	case il.Path != "":
		label := "插圖："
		if il.Custom {
			label = "自訂圖片："
		}
		return theme.Label.Render(label) + il.Path
	}
	return ""
}
