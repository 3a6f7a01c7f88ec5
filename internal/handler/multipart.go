package handler

import (
	"io"
	"mime/multipart"

	"github.com/labstack/echo/v4"

	"github.com/crediflow/crediflow-backend/internal/service"
)

// readUpload materializes one multipart file header into an UploadFile.
func readUpload(fh *multipart.FileHeader) (*service.UploadFile, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	return &service.UploadFile{
		Data:        data,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
	}, nil
}

// formFile reads an optional single file field; a missing field returns nil.
func formFile(c echo.Context, name string) (*service.UploadFile, error) {
	fh, err := c.FormFile(name)
	if err != nil {
		return nil, nil
	}
	return readUpload(fh)
}

// formFiles reads every file attached under one multipart field name.
func formFiles(c echo.Context, name string) ([]service.UploadFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	var files []service.UploadFile
	for _, fh := range form.File[name] {
		file, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, *file)
	}
	return files, nil
}
