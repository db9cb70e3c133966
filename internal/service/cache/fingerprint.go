package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"InsightHub/internal/domain/models"
	"InsightHub/pkg/util"
)

// Fingerprint returns the stable SHA-256 hex digest of a normalized request.
// Question and category are trimmed and lowercased (inner whitespace collapsed
// for the question); horizon is taken verbatim. Equivalent requests hash
// identically regardless of casing or stray whitespace.
func Fingerprint(req models.InsightRequest) string {
	parts := []string{
		util.NormalizeText(req.Question),
		strings.ToLower(strings.TrimSpace(req.Category)),
		req.Horizon,
		req.AnalysisType,
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
