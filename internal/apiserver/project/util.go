package project

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"path"
	"strings"
)

// writeJSON 写入 JSON 响应
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError 写入错误响应
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// generateID 生成带前缀的随机 ID
// 格式：prefix-xxxxxxxxxxxx（prefix + 12 字符 hex）
func generateID(prefix string) string {
	b := make([]byte, 6)
	rand.Read(b)
	return prefix + "-" + hex.EncodeToString(b)
}

// objectKey 构造对象存储 key：projects/{projectID}/{kind}-xxxxxx{ext}
//
// 文件名只保留扩展名，避免把用户输入拼进存储路径。
func objectKey(projectID, kind, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	b := make([]byte, 3)
	rand.Read(b)
	return "projects/" + projectID + "/" + kind + "-" + hex.EncodeToString(b) + ext
}
