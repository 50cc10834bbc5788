package conversation

import (
	"fmt"

	"github.com/bytedance/sonic"
)

func encodeTurnPayload(payload turnPayload) (string, error) {
	body, err := sonic.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("conversation: encode turn payload: %w", err)
	}
	return string(body), nil
}

func decodeTurnPayload(body string) (turnPayload, error) {
	var payload turnPayload
	if err := sonic.Unmarshal([]byte(body), &payload); err != nil {
		return turnPayload{}, fmt.Errorf("conversation: decode turn payload: %w", err)
	}
	return payload, nil
}
