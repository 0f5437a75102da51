package storage

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jonathan/hiring-pipeline/internal/types"
)

// DefaultMaxUploadBytes is used when the uploader is built without a limit.
const DefaultMaxUploadBytes = 10 << 20

const maxFilenameLength = 100

// Kind groups uploaded objects by purpose; it is the first segment of the object key.
type Kind string

const (
	KindResume         Kind = "resumes"
	KindOfferLetter    Kind = "offer-letters"
	KindSignedOffer    Kind = "signed-offers"
	KindTaskDocument   Kind = "task-documents"
	KindTaskSubmission Kind = "task-submissions"
)

const (
	mimePDF  = "application/pdf"
	mimeDOC  = "application/msword"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeText = "text/plain"
	mimeMD   = "text/markdown"
	mimeZip  = "application/zip"
)

var allowedTypes = map[Kind][]string{
	KindResume:         {mimePDF, mimeDOCX},
	KindOfferLetter:    {mimePDF, mimeDOC, mimeDOCX},
	KindSignedOffer:    {mimePDF, mimeDOC, mimeDOCX},
	KindTaskDocument:   {mimePDF, mimeDOC, mimeDOCX, mimeText, mimeMD},
	KindTaskSubmission: {mimePDF, mimeDOC, mimeDOCX, mimeText, mimeMD, mimeZip, "application/x-zip-compressed"},
}

// File is an uploaded document held in memory.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Uploader validates documents and stores them under per-application keys.
type Uploader struct {
	store    Store
	maxBytes int64
	newID    func() uuid.UUID
}

// NewUploader creates an uploader writing to store. maxBytes <= 0 selects DefaultMaxUploadBytes.
func NewUploader(store Store, maxBytes int64) *Uploader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &Uploader{store: store, maxBytes: maxBytes, newID: uuid.New}
}

// MaxBytes returns the per-file size limit.
func (u *Uploader) MaxBytes() int64 {
	return u.maxBytes
}

func (u *Uploader) UploadResume(ctx context.Context, applicationID uuid.UUID, f File) (types.FileRef, error) {
	return u.upload(ctx, KindResume, applicationID, f)
}

func (u *Uploader) UploadOfferLetter(ctx context.Context, applicationID uuid.UUID, f File) (types.FileRef, error) {
	return u.upload(ctx, KindOfferLetter, applicationID, f)
}

func (u *Uploader) UploadSignedOffer(ctx context.Context, applicationID uuid.UUID, f File) (types.FileRef, error) {
	return u.upload(ctx, KindSignedOffer, applicationID, f)
}

func (u *Uploader) UploadTaskDocument(ctx context.Context, applicationID uuid.UUID, f File) (types.FileRef, error) {
	return u.upload(ctx, KindTaskDocument, applicationID, f)
}

func (u *Uploader) UploadTaskSubmission(ctx context.Context, applicationID uuid.UUID, f File) (types.FileRef, error) {
	return u.upload(ctx, KindTaskSubmission, applicationID, f)
}

func (u *Uploader) upload(ctx context.Context, kind Kind, applicationID uuid.UUID, f File) (types.FileRef, error) {
	if len(f.Data) == 0 {
		return types.FileRef{}, types.Invalid("file", "file is empty")
	}
	if int64(len(f.Data)) > u.maxBytes {
		return types.FileRef{}, types.Invalid("file", fmt.Sprintf("file exceeds the %d byte upload limit", u.maxBytes))
	}

	contentType := baseMediaType(f.ContentType)
	if !slices.Contains(allowedTypes[kind], contentType) {
		return types.FileRef{}, types.Invalid("file", fmt.Sprintf("file type %q is not allowed for %s", contentType, kind))
	}

	filename := SanitizeFilename(f.Filename)
	key := ObjectKey(kind, applicationID, u.newID(), filename)

	fileURL, err := u.store.Put(ctx, key, f.Data, contentType)
	if err != nil {
		return types.FileRef{}, err
	}
	return types.FileRef{URL: fileURL, Filename: filename}, nil
}

// ObjectKey builds "<kind>/<applicationID>/<objectID>-<filename>".
func ObjectKey(kind Kind, applicationID, objectID uuid.UUID, filename string) string {
	return fmt.Sprintf("%s/%s/%s-%s", kind, applicationID, objectID, filename)
}

// SanitizeFilename keeps the base name of a client-supplied filename and replaces
// anything outside [A-Za-z0-9._-] with an underscore.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" {
		name = ""
	}

	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}

	clean := strings.Trim(sb.String(), "._")
	if clean == "" {
		return "file"
	}
	if len(clean) > maxFilenameLength {
		ext := path.Ext(clean)
		if len(ext) > 10 {
			ext = ""
		}
		clean = clean[:maxFilenameLength-len(ext)] + ext
	}
	return clean
}

func baseMediaType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// MemoryStore keeps objects in memory. It backs local development without a bucket.
type MemoryStore struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]Object
}

// Object is a stored blob.
type Object struct {
	ContentType string
	Data        []byte
}

// NewMemoryStore creates an empty store whose URLs start with baseURL.
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		objects: make(map[string]Object),
	}
}

func (m *MemoryStore) Put(_ context.Context, key string, body []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = Object{ContentType: contentType, Data: slices.Clone(body)}
	return m.baseURL + "/" + key, nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// Get returns the object stored under key.
func (m *MemoryStore) Get(key string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj, ok
}

// Keys returns the stored keys in sorted order.
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
