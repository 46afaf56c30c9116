package handler

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/hitoshi/earshelf/internal/model"
)

// maxRequestBodySize はフォーム/JSONリクエストボディの上限（1MB）。
const maxRequestBodySize = 1 << 20

// isJSONRequest はContent-Typeがapplication/jsonかどうかを判定する。
func isJSONRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

// decodeJSONBody はJSONボディをdstにデコードする。
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return model.NewInvalidInputError("リクエストボディの解析に失敗しました。")
	}
	return nil
}

// formValues はフォームまたはJSONボディから指定フィールドの文字列値を取り出す。
// JSONの場合は文字列・数値のどちらも受け付ける。
func formValues(w http.ResponseWriter, r *http.Request, fields ...string) (map[string]string, error) {
	values := make(map[string]string, len(fields))

	if isJSONRequest(r) {
		var raw map[string]json.RawMessage
		if err := decodeJSONBody(w, r, &raw); err != nil {
			return nil, err
		}
		for _, f := range fields {
			v, ok := raw[f]
			if !ok {
				continue
			}
			var s string
			if err := json.Unmarshal(v, &s); err == nil {
				values[f] = s
				continue
			}
			values[f] = strings.TrimSpace(string(v))
		}
		return values, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := r.ParseForm(); err != nil {
		return nil, model.NewInvalidInputError("リクエストボディの解析に失敗しました。")
	}
	for _, f := range fields {
		if v := r.PostFormValue(f); v != "" {
			values[f] = v
		}
	}
	return values, nil
}

// parseAudiobookID は文字列のオーディオブックIDを解析する。正の整数のみ受け付ける。
func parseAudiobookID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
