package model

// MessageType defines the wire message types sent to the input server
type MessageType string

const (
	// MessageTypeMouseMove moves the pointer
	MessageTypeMouseMove MessageType = "mouse_move"
	// MessageTypeMouseClick clicks a mouse button
	MessageTypeMouseClick MessageType = "mouse_click"
	// MessageTypeMouseScroll scrolls the wheel
	MessageTypeMouseScroll MessageType = "mouse_scroll"
	// MessageTypeKeyPress presses, holds or releases a key
	MessageTypeKeyPress MessageType = "key_press"
	// MessageTypeKeyType types a text string
	MessageTypeKeyType MessageType = "key_type"
	// MessageTypeMultipleKeys presses a key combination
	MessageTypeMultipleKeys MessageType = "multiple_keys"
)

// KeepAliveFrame is the keep-alive sent as a bare text frame, not JSON
const KeepAliveFrame = "ping"

// MouseMoveMessage moves the pointer by a delta or to an absolute position
type MouseMoveMessage struct {
	Type MessageType `json:"type"`
	// X is the horizontal delta, or absolute coordinate when Relative is false
	X float64 `json:"x"`
	// Y is the vertical delta, or absolute coordinate when Relative is false
	Y float64 `json:"y"`
	// Relative selects delta movement over absolute positioning
	Relative bool `json:"relative"`
}

// MouseClickMessage clicks a mouse button one or more times
type MouseClickMessage struct {
	Type MessageType `json:"type"`
	// Button is the button identifier (left, right, middle)
	Button string `json:"button"`
	// Clicks is the number of clicks
	Clicks int `json:"clicks"`
	// Interval is the pause between clicks in seconds
	Interval float64 `json:"interval"`
}

// MouseScrollMessage scrolls the wheel by a signed amount
type MouseScrollMessage struct {
	Type MessageType `json:"type"`
	// Amount is the signed scroll delta
	Amount int `json:"amount"`
}

// KeyPressMessage presses a single key
type KeyPressMessage struct {
	Type MessageType `json:"type"`
	// Key is the key name (enter, esc, a, ...)
	Key string `json:"key"`
	// Hold keeps the key down without releasing
	Hold bool `json:"hold"`
	// Release releases a previously held key
	Release bool `json:"release"`
}

// KeyTypeMessage types a text string character by character
type KeyTypeMessage struct {
	Type MessageType `json:"type"`
	// Text is the string to type
	Text string `json:"text"`
	// Interval is the pause between characters in seconds
	Interval float64 `json:"interval"`
}

// MultipleKeysMessage presses a key combination
type MultipleKeysMessage struct {
	Type MessageType `json:"type"`
	// Keys are the key names pressed together, in order
	Keys []string `json:"keys"`
}

// NewMouseMoveMessage creates a pointer movement message
func NewMouseMoveMessage(x, y float64, relative bool) *MouseMoveMessage {
	return &MouseMoveMessage{
		Type:     MessageTypeMouseMove,
		X:        x,
		Y:        y,
		Relative: relative,
	}
}

// NewMouseClickMessage creates a mouse click message
func NewMouseClickMessage(button string, clicks int, interval float64) *MouseClickMessage {
	if button == "" {
		button = "left"
	}
	if clicks <= 0 {
		clicks = 1
	}
	return &MouseClickMessage{
		Type:     MessageTypeMouseClick,
		Button:   button,
		Clicks:   clicks,
		Interval: interval,
	}
}

// NewMouseScrollMessage creates a scroll message
func NewMouseScrollMessage(amount int) *MouseScrollMessage {
	return &MouseScrollMessage{
		Type:   MessageTypeMouseScroll,
		Amount: amount,
	}
}

// NewKeyPressMessage creates a key press message
func NewKeyPressMessage(key string, hold, release bool) *KeyPressMessage {
	return &KeyPressMessage{
		Type:    MessageTypeKeyPress,
		Key:     key,
		Hold:    hold,
		Release: release,
	}
}

// NewKeyTypeMessage creates a text typing message
func NewKeyTypeMessage(text string, interval float64) *KeyTypeMessage {
	return &KeyTypeMessage{
		Type:     MessageTypeKeyType,
		Text:     text,
		Interval: interval,
	}
}

// NewMultipleKeysMessage creates a key combination message
func NewMultipleKeysMessage(keys []string) *MultipleKeysMessage {
	return &MultipleKeysMessage{
		Type: MessageTypeMultipleKeys,
		Keys: keys,
	}
}
