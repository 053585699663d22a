package pipeline

import (
	"io"

	"object-remover/internal/imaging"
)

// ImageLoader decodes images from files, readers or memory.
type ImageLoader interface {
	LoadFromPath(path string) (*ImageData, error)
	LoadFromReader(reader io.Reader, format string) (*ImageData, error)
	LoadFromBytes(data []byte, format string) (*ImageData, error)
	LoadMask(path string) (*imaging.Mask, error)
}

// ImageSaver encodes images to files or writers.
type ImageSaver interface {
	SaveToWriter(writer io.Writer, img *imaging.Image, format string) error
	SaveToPath(path string, img *imaging.Image) error
}

// ImageData is a decoded image normalised to BGR.
type ImageData struct {
	Image *imaging.Image
	// Channels is the channel count of the encoded source before normalisation.
	Channels int
	Format   string
	Path     string
	Decoder  string
}

func (d *ImageData) Width() int  { return d.Image.Width() }
func (d *ImageData) Height() int { return d.Image.Height() }
