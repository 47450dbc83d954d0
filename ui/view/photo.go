package view

import (
	"image"

	"github.com/soocke/sentinel-go/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// photoLabel is a label showing PNG frames. The previous Tk photo is deleted
// before it is replaced so off-screen image data does not accumulate.
type photoLabel struct {
	label       *LabelWidget
	photo       *Img
	placeholder []byte
}

func placeholderPNG(w, h int) []byte {
	return images.EncodePNG(image.NewRGBA(image.Rect(0, 0, w, h)))
}

// newPhotoLabel creates a label on parent (the root window when nil).
func newPhotoLabel(parent *Window, w, h int) *photoLabel {
	p := &photoLabel{placeholder: placeholderPNG(w, h)}
	p.photo = NewPhoto(Data(p.placeholder))
	if parent != nil {
		p.label = parent.Label(Image(p.photo), Borderwidth(1), Relief("sunken"))
	} else {
		p.label = Label(Image(p.photo), Borderwidth(1), Relief("sunken"))
	}
	return p
}

// Set shows png, or the placeholder when png is empty.
func (p *photoLabel) Set(png []byte) {
	if p == nil || p.label == nil {
		return
	}
	if len(png) == 0 {
		png = p.placeholder
	}
	if p.photo != nil {
		p.photo.Delete()
	}
	p.photo = NewPhoto(Data(png))
	p.label.Configure(Image(p.photo))
}

// release deletes the photo; the label itself goes with its window.
func (p *photoLabel) release() {
	if p != nil && p.photo != nil {
		p.photo.Delete()
		p.photo = nil
	}
}
