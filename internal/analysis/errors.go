package analysis

import (
	"errors"
	"fmt"
)

// User-facing messages.
const (
	MsgEmptyInput      = "請輸入內容以開始解析。"
	MsgNoWords         = "無法從您輸入的內容中提取有效的詞彙，請嘗試提供更清晰的文本或直接輸入詞彙清單。"
	MsgRequestFailed   = "處理您的請求時發生錯誤，請檢查您的網路連線，然後再試一次。"
	MsgNoQuestions     = "AI 無法為這些詞彙產生測驗題目。學習與圖片管理功能仍可使用。"
	MsgEmptyChars      = "請輸入生字以產生教材。"
	MsgEmptyWords      = "請輸入語詞以產生教材。"
	MsgImagesNeedInput = "請先輸入內容才能管理圖片。"
)

// MsgTooFewWords formats the notice for an input with fewer than
// MinQuizWords words.
func MsgTooFewWords(n int) string {
	return fmt.Sprintf("產生測驗至少需要%d個詞彙，但只偵測到 %d 個。測驗功能將無法使用。", MinQuizWords, n)
}

// UserError carries a localized message for display. Err is the cause,
// if any, kept for logging.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *UserError) Unwrap() error { return e.Err }

func userError(msg string, cause error) error {
	return &UserError{Message: msg, Err: cause}
}

// Message returns the text to show for err: the UserError message when
// there is one, otherwise the generic failure message.
func Message(err error) string {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Message
	}
	return MsgRequestFailed
}
