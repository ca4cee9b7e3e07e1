package api

import (
	stderrors "errors"
	"io"
	"net/http"

	"github.com/matzehuels/linkscope/pkg/errors"
)

// uploadField is the multipart field carrying the graph file.
const uploadField = "file"

// readUpload extracts the uploaded file's name and content. A request
// without the field fails with "No file part", one whose file has no name
// with "No selected file"; both are INVALID_UPLOAD errors.
func readUpload(w http.ResponseWriter, r *http.Request, limit int64) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooBig *http.MaxBytesError
		if stderrors.As(err, &tooBig) {
			return "", nil, errors.New(errors.ErrCodeInvalidUpload, "File exceeds the %d byte upload limit", limit)
		}
		return "", nil, errors.Wrap(errors.ErrCodeInvalidUpload, err, "No file part")
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		if _, ok := r.MultipartForm.Value[uploadField]; ok {
			return "", nil, errors.New(errors.ErrCodeInvalidUpload, "No selected file")
		}
		return "", nil, errors.New(errors.ErrCodeInvalidUpload, "No file part")
	}
	defer file.Close()

	if header.Filename == "" {
		return "", nil, errors.New(errors.ErrCodeInvalidUpload, "No selected file")
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrCodeInvalidUpload, err, "read upload: %v", err)
	}
	return header.Filename, data, nil
}
