package service

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
)

// pdfFile returns a minimal upload that passes PDF validation.
func pdfFile() UploadFile {
	return UploadFile{
		Data:        []byte("%PDF-1.4\n%fake signed agreement\n%%EOF"),
		Filename:    "contract_signed.pdf",
		ContentType: "application/pdf",
	}
}

// jpegBytes encodes a small solid-color JPEG of the given width.
func jpegBytes(width int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, width/2+1))
	for y := img.Bounds().Min.Y; y < img.Bounds().Max.Y; y++ {
		for x := img.Bounds().Min.X; x < img.Bounds().Max.X; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// imageFiles returns n valid JPEG uploads.
func imageFiles(n int) []UploadFile {
	files := make([]UploadFile, 0, n)
	data := jpegBytes(64)
	for i := 0; i < n; i++ {
		files = append(files, UploadFile{
			Data:        data,
			Filename:    fmt.Sprintf("house_%d.jpg", i+1),
			ContentType: "image/jpeg",
		})
	}
	return files
}
