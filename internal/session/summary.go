package session

import (
	"fmt"
	"time"

	"github.com/abhisek/cihui/internal/vocab"
)

// Result is what a completed session hands to the results screen.
type Result struct {
	SessionID string
	Kind      vocab.QuizKind
	Round     int
	Total     int
	Correct   int
	Incorrect []vocab.Question
	Elapsed   time.Duration
}

// Perfect reports whether every question was answered correctly.
func (r Result) Perfect() bool { return len(r.Incorrect) == 0 }

// Headline is the results banner.
func (r Result) Headline() string {
	if r.Perfect() {
		return "恭喜你，全部答對了！"
	}
	return "再接再厲！"
}

// Detail is the line under the banner.
func (r Result) Detail() string {
	if r.Perfect() {
		return "你真是個詞彙大師！"
	}
	return fmt.Sprintf("你答錯了 %d 題。", len(r.Incorrect))
}
