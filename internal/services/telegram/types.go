package telegram

// Message is the subset of a Bot API message the indexer needs
type Message struct {
	MessageID int64       `json:"message_id"`
	Text      string      `json:"text"`
	Caption   string      `json:"caption"`
	Video     *Video      `json:"video"`
	Photo     []PhotoSize `json:"photo"`
}

// Video is the media attachment of a storage channel message
type Video struct {
	FileID   string `json:"file_id"`
	Duration int    `json:"duration"`
	FileSize int64  `json:"file_size"`
}

// PhotoSize is one rendition of an attached photo
type PhotoSize struct {
	FileID string `json:"file_id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// HasMedia reports whether the message carries deliverable media
func (m *Message) HasMedia() bool {
	return m != nil && m.Video != nil
}

// MediaCaption returns the caption text, falling back to the message text
func (m *Message) MediaCaption() string {
	if m.Caption != "" {
		return m.Caption
	}
	return m.Text
}

// SendMessageRequest is the payload for sendMessage
type SendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// SendPhotoRequest is the payload for sendPhoto
type SendPhotoRequest struct {
	ChatID    int64  `json:"chat_id"`
	Photo     string `json:"photo"`
	Caption   string `json:"caption,omitempty"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// EditMessageTextRequest is the payload for editMessageText
type EditMessageTextRequest struct {
	ChatID    int64  `json:"chat_id"`
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}
