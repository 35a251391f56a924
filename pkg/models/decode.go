package models

import (
	"encoding/json"
	"fmt"
)

// Decode はデコード済みのPayloadを呼び出し側が知っている型に変換します。
// ファサードは型を持たないため、スキーマが必要な箇所でのみ使用してください。
func Decode[T any](p Payload) (T, error) {
	var out T
	raw, err := json.Marshal(p)
	if err != nil {
		return out, fmt.Errorf("payloadの再エンコードに失敗: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("payloadを%Tに変換できません: %w", out, err)
	}
	return out, nil
}
