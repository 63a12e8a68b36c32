package tg

// Sticker represents a sticker.
type Sticker struct {
	FileID       string     `json:"file_id"`
	FileUniqueID string     `json:"file_unique_id"`
	Type         string     `json:"type"` // "regular", "mask", "custom_emoji"
	Width        int        `json:"width"`
	Height       int        `json:"height"`
	IsAnimated   bool       `json:"is_animated"`
	IsVideo      bool       `json:"is_video"`
	Emoji        string     `json:"emoji,omitempty"`
	SetName      string     `json:"set_name,omitempty"`
	Thumbnail    *PhotoSize `json:"thumbnail,omitempty"`
}

// StickerSet represents a sticker set.
type StickerSet struct {
	Name        string     `json:"name"`
	Title       string     `json:"title"`
	StickerType string     `json:"sticker_type"`
	Stickers    []Sticker  `json:"stickers"`
	Thumbnail   *PhotoSize `json:"thumbnail,omitempty"`
}

// FileIDs returns the file identifiers of every sticker in the set.
func (s *StickerSet) FileIDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.Stickers))
	for _, st := range s.Stickers {
		if st.FileID != "" {
			ids = append(ids, st.FileID)
		}
	}
	return ids
}
