package search

import (
	"encoding/json"
	"fmt"

	"github.com/yellowbooks/bizsearch/internal/domain"
)

// promptBusiness is the per-match block rendered into the prompt.
type promptBusiness struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	District    string `json:"district"`
	Description string `json:"description"`
	Relevance   string `json:"relevance"`
}

// buildPrompt renders the ranked matches and the question into the prompt
// for the generation model. The rules constrain it to the supplied facts,
// Mongolian, 3-5 recommendations with districts, and honesty about misses.
func buildPrompt(question string, matches []domain.ScoredMatch) string {
	blocks := make([]promptBusiness, len(matches))
	for i, m := range matches {
		description := m.Description
		if description == "" {
			description = m.Summary
		}
		blocks[i] = promptBusiness{
			Name:        m.Name,
			Category:    m.Category,
			District:    m.District,
			Description: description,
			Relevance:   fmt.Sprintf("%.2f", m.Score),
		}
	}

	// Marshal of plain string fields cannot fail.
	businessesJSON, _ := json.MarshalIndent(blocks, "", "  ")

	return fmt.Sprintf(`Та Yellow Books-ийн туслах бөгөөд Улаанбаатар хотын бизнесүүдийн талаар мэдээлэл өгдөг.

Хэрэглэгчийн асуулт: "%s"

Ашиглах боломжтой бизнесүүдийн мэдээлэл:
%s

Дүрэм:
- Зөвхөн өгөгдсөн JSON мэдээлэл ашиглан хариулна уу
- Монгол хэлээр, найрсаг өнгө аясаар хариулна уу
- 3-5 бизнес санал болгоно уу (хамгийн тохиромжтой эхэлж)
- Бизнесийн нэр болон дүүргийг дурдана уу
- Хэрэв тохирох зүйл олдохгүй бол үнэнийг хэлнэ үү
- Товч бөгөөд ойлгомжтой байна уу

Хариулт:`, question, businessesJSON)
}
