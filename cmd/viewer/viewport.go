package main

// viewport is the visible window onto an image of imgW x imgH pixels.
// x and y stay within the image so panning never runs off into blank space.
type viewport struct {
	x, y       int
	w, h       int
	imgW, imgH int
}

func (v *viewport) pan(dx, dy int) {
	v.x = clamp(v.x+dx, v.imgW-v.w)
	v.y = clamp(v.y+dy, v.imgH-v.h)
}

// resize switches to an image of a new size, keeping the offset if it still fits.
func (v *viewport) resize(imgW, imgH int) {
	v.imgW, v.imgH = imgW, imgH
	v.pan(0, 0)
}

func clamp(n, max int) int {
	if n > max {
		n = max
	}
	if n < 0 {
		n = 0
	}
	return n
}
