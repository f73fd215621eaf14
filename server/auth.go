package server

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/cyclopcam/www"
	"github.com/stobias123/fiftyone/pkg/importer"
	"github.com/stobias123/fiftyone/pkg/pwdhash"
)

// authenticateRequest panics with 401 unless the request carries the configured API key,
// either as "Authorization: ApiKey <key>", or as the password of BASIC authentication.
func (s *Server) authenticateRequest(r *http.Request) {
	if s.apiKeyHash == "" {
		www.PanicForbiddenf("No apiKeyHash is configured, so datasets cannot be modified")
	}
	key := ""
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "ApiKey ") {
		key = strings.TrimPrefix(auth, "ApiKey ")
	} else if _, password, ok := r.BasicAuth(); ok {
		key = password
	}
	if key == "" || !pwdhash.VerifyKeyBase64(key, s.apiKeyHash) {
		www.PanicUnauthorized()
	}
}

// confineImport resolves the paths of an import request against the datasets root,
// and panics with 403 if any of them lies outside it.
func (s *Server) confineImport(cfg *importer.Config) {
	if s.datasetsRoot == "" {
		www.PanicForbiddenf("No datasetsRoot is configured, so imports are disabled")
	}
	if cfg.DatasetDir == "" {
		www.PanicBadRequestf("datasetDir is required")
	}
	if !filepath.IsAbs(cfg.DatasetDir) {
		cfg.DatasetDir = filepath.Join(s.datasetsRoot, cfg.DatasetDir)
	}
	for _, p := range []string{cfg.DatasetDir, cfg.ResolvedDataPath(), cfg.ResolvedLabelsPath()} {
		if !insideDir(s.datasetsRoot, p) {
			www.PanicForbiddenf("Path '%v' is outside of the datasets root", p)
		}
	}
}

// insideDir returns true if p is dir, or inside it
func insideDir(dir, p string) bool {
	if strings.HasPrefix(p, "gs://") {
		return false
	}
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(p))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
