package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FlexString allows JSON fields to be provided as string or number.
// Form-style input keeps its raw text so that validation, not decoding, reports bad values.
type FlexString string

func (fs *FlexString) UnmarshalJSON(data []byte) error {
	if fs == nil {
		return fmt.Errorf("FlexString: nil receiver")
	}
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		*fs = FlexString(strings.TrimSpace(s))
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(trimmed, &num); err == nil {
		*fs = FlexString(num.String())
		return nil
	}

	return fmt.Errorf("FlexString: expected string or number, got %s", string(data))
}

func (fs FlexString) String() string {
	return string(fs)
}
