package normalize

import (
	"fmt"

	"github.com/tzhuang/anobii-goodreads-sync/internal/models"
)

// ShelfRule binds a localized status phrase to a canonical shelf.
type ShelfRule struct {
	Phrase string
	Shelf  models.Shelf
}

// LanguageProfile describes one localization of the aNobii export: the
// column header names and the ordered status phrases. Rules are evaluated
// in order and the first match wins, so the order is part of the contract.
type LanguageProfile struct {
	Name    string
	Headers map[string]string
	Rules   []ShelfRule
}

// Canonical header keys used to look up localized column names.
const (
	HeaderISBN           = "ISBN"
	HeaderTitle          = "Title"
	HeaderAuthor         = "Author"
	HeaderFormat         = "Format"
	HeaderNumberOfPages  = "Number of pages"
	HeaderPublisher      = "Publisher"
	HeaderPubDate        = "Publication date"
	HeaderPrivateNote    = "Private Note"
	HeaderCommentTitle   = "Comment title"
	HeaderCommentContent = "Comment content"
	HeaderStatus         = "Status"
	HeaderStars          = "Stars"
	HeaderPriority       = "Priority"
	HeaderTags           = "Tags"
)

var profiles = map[string]LanguageProfile{
	"en": {
		Name: "en",
		Headers: map[string]string{
			HeaderISBN:           "ISBN",
			HeaderTitle:          "Title",
			HeaderAuthor:         "Author",
			HeaderFormat:         "Format",
			HeaderNumberOfPages:  "Number of pages",
			HeaderPublisher:      "Publisher",
			HeaderPubDate:        "Publication date",
			HeaderPrivateNote:    "Private Note",
			HeaderCommentTitle:   "Comment title",
			HeaderCommentContent: "Comment content",
			HeaderStatus:         "Status",
			HeaderStars:          "Stars",
			HeaderPriority:       "Priority",
			HeaderTags:           "Tags",
		},
		Rules: []ShelfRule{
			{"Not Started", models.ShelfToRead},
			{"Reading", models.ShelfCurrentlyReading},
			{"Unfinished", models.ShelfUnfinished},
			{"Finished", models.ShelfRead},
			{"Reference", models.ShelfReference},
			{"Abandoned", models.ShelfAbandoned},
		},
	},
	"zh-tw": {
		Name: "zh-tw",
		Headers: map[string]string{
			HeaderISBN:           "ISBN",
			HeaderTitle:          "書名",
			HeaderAuthor:         "作者",
			HeaderFormat:         "裝訂規格",
			HeaderNumberOfPages:  "頁數",
			HeaderPublisher:      "出版者",
			HeaderPubDate:        "出版日期",
			HeaderPrivateNote:    "私人筆記",
			HeaderCommentTitle:   "評論標題",
			HeaderCommentContent: "評論內容",
			HeaderStatus:         "狀態",
			HeaderStars:          "評等",
			HeaderPriority:       "優先順序",
			HeaderTags:           "標籤",
		},
		Rules: []ShelfRule{
			{"還未開始", models.ShelfToRead},
			{"開始閱讀", models.ShelfCurrentlyReading},
			{"開始還未完成", models.ShelfUnfinished},
			{"讀完", models.ShelfRead},
			{"參考", models.ShelfReference},
			{"捨棄", models.ShelfAbandoned},
		},
	},
}

// Profile returns the language profile for the given name.
func Profile(name string) (LanguageProfile, error) {
	p, ok := profiles[name]
	if !ok {
		return LanguageProfile{}, fmt.Errorf("unknown language profile: %q", name)
	}
	return p, nil
}

// ProfileNames lists the supported language profiles.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	return names
}
