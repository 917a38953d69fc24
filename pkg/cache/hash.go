package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Hash returns the hex SHA-256 of data (64 characters).
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashJSON hashes the JSON encoding of v. Struct fields encode in
// declaration order and map keys sorted, so equal values hash equally.
func HashJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("hash: %w", err)
	}
	return Hash(data), nil
}

// hashKey builds "prefix:<hash>" over chartHash and the option struct.
// Option structs always encode, so the error is dropped.
func hashKey(prefix, chartHash string, opts any) string {
	h, _ := HashJSON([2]any{chartHash, opts})
	return prefix + ":" + h
}
