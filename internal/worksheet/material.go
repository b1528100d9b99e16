package worksheet

import (
	"fmt"
	"strings"

	"github.com/abhisek/cihui/internal/vocab"
)

// NoMaterialText is returned when there are no cards.
const NoMaterialText = "沒有學習資料可供輸出。"

// RenderLearningMaterial serializes learning cards for printing.
func RenderLearningMaterial(cards []vocab.LearningCard) string {
	if len(cards) == 0 {
		return NoMaterialText
	}

	var b strings.Builder
	for i, card := range cards {
		fmt.Fprintf(&b, "%s\n詞彙 %d: %s\n%s\n\n", rule, i+1, card.Word, rule)

		if len(card.CharDefinitions) > 0 {
			b.WriteString("【個別字義】\n")
			for _, def := range card.CharDefinitions {
				fmt.Fprintf(&b, "  - (%s): [%s]\n", def.Char, def.Definition)
			}
			b.WriteString("\n")
		}

		fmt.Fprintf(&b, "【語詞意思】\n  [%s]\n\n", card.Definition)

		if len(card.Sentences) > 0 {
			b.WriteString("【例句】\n")
			for j, s := range card.Sentences {
				fmt.Fprintf(&b, "  %d. [%s]\n", j+1, s)
			}
		}

		if i < len(cards)-1 {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}
