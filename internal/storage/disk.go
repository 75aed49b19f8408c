package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

const DefaultBucket = "passport-documents"

// DiskStore keeps objects on the local filesystem under a bucket directory
// and issues timed access as HS256-signed tokens redeemable at the download
// endpoint. It stands in for a hosted object store behind the same interface.
type DiskStore struct {
	baseDir    string
	publicBase string // e.g. http://localhost:8080
	secret     []byte
}

type accessClaims struct {
	Path string `json:"path"`
	jwtlib.RegisteredClaims
}

func NewDiskStore(baseDir, publicBase, secret string) (*DiskStore, error) {
	if baseDir == "" {
		baseDir = DefaultBucket
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create bucket dir: %w", err)
	}
	return &DiskStore{
		baseDir:    baseDir,
		publicBase: strings.TrimSuffix(publicBase, "/"),
		secret:     []byte(secret),
	}, nil
}

func (s *DiskStore) Put(ctx context.Context, path string, r io.Reader, size int64, contentType string) error {
	abs, err := s.absPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}
	dst, err := os.Create(abs)
	if err != nil {
		return fmt.Errorf("create object: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		_ = os.Remove(abs)
		return fmt.Errorf("write object: %w", err)
	}
	return nil
}

func (s *DiskStore) Remove(ctx context.Context, paths ...string) error {
	for _, p := range paths {
		abs, err := s.absPath(p)
		if err != nil {
			return err
		}
		if err := os.Remove(abs); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("%w: %s", ErrObjectNotFound, p)
			}
			return fmt.Errorf("remove object %s: %w", p, err)
		}
	}
	return nil
}

func (s *DiskStore) IssueTimedAccess(ctx context.Context, path string, ttl time.Duration) (string, time.Time, error) {
	abs, err := s.absPath(path)
	if err != nil {
		return "", time.Time{}, err
	}
	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return "", time.Time{}, fmt.Errorf("%w: %s", ErrObjectNotFound, path)
		}
		return "", time.Time{}, fmt.Errorf("stat object %s: %w", path, err)
	}

	expiresAt := time.Now().Add(ttl)
	claims := accessClaims{
		Path: path,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			IssuedAt:  jwtlib.NewNumericDate(time.Now()),
		},
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return s.publicBase + "/download/" + token, expiresAt, nil
}

func (s *DiskStore) List(ctx context.Context, prefix string) ([]Entry, error) {
	var entries []Entry
	err := filepath.WalkDir(s.baseDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(s.baseDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !strings.HasPrefix(rel, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		entries = append(entries, Entry{Path: rel, Size: info.Size(), ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", prefix, err)
	}
	return entries, nil
}

// Redeem validates a timed-access token and returns the absolute file path
// it grants. Used by the download endpoint.
func (s *DiskStore) Redeem(token string) (string, error) {
	parsed, err := jwtlib.ParseWithClaims(token, &accessClaims{}, func(t *jwtlib.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if strings.Contains(err.Error(), "expired") {
			return "", ErrExpiredAccess
		}
		return "", ErrInvalidAccess
	}
	claims, ok := parsed.Claims.(*accessClaims)
	if !ok || !parsed.Valid || claims.Path == "" {
		return "", ErrInvalidAccess
	}
	return s.absPath(claims.Path)
}

// absPath resolves an object path under the bucket dir and rejects anything
// that would escape it.
func (s *DiskStore) absPath(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("%w: bad path %q", ErrInvalidAccess, path)
	}
	return filepath.Join(s.baseDir, clean), nil
}
