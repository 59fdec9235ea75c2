// Package paths maps abstract path kinds to concrete directories.
//
// Two storage policies exist side by side:
//
//   - Repo-local kinds (templates, modes) live inside the checked-out tree, so
//     every worktree sees the versions committed on its own branch.
//   - Centralized kinds (tasks, sessions, config) live under the user's home in
//     a per-project directory derived from the main repository path, so all
//     worktrees of a project share one task database.
//
// The per-project directory name comes from Encode.
package paths

import (
	"encoding/hex"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"
)

const (
	maxSlugLen   = 48
	digestHexLen = 12
)

// Encode maps an absolute project path to a filesystem-safe directory name.
//
// The result is a readable slug of the path followed by a short BLAKE3 digest
// of the exact cleaned path, e.g. "home-alice-src-proj-3f9a0c41be27".
// Paths that slug identically (case or punctuation differences) still encode
// differently because the digest covers the original bytes.
func Encode(absPath string) string {
	clean := absPath
	if clean != "" {
		clean = filepath.Clean(absPath)
	}

	sum := blake3.Sum256([]byte(clean))
	digest := hex.EncodeToString(sum[:])[:digestHexLen]

	slug := slugify(clean)
	if slug == "" {
		slug = "root"
	}

	return slug + "-" + digest
}

// slugify keeps lower-case ASCII alphanumerics and collapses everything else
// into single dashes.
func slugify(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			dash = false
		default:
			if !dash && sb.Len() > 0 {
				sb.WriteByte('-')
				dash = true
			}
		}
	}

	out := strings.TrimRight(sb.String(), "-")
	if len(out) > maxSlugLen {
		// Keep the tail: the project directory name is the most telling part.
		out = strings.TrimLeft(out[len(out)-maxSlugLen:], "-")
	}
	return out
}
