//go:build cgo

package vpx

/*
#cgo pkg-config: vpx

#include "vpx/vpx_decoder.h"
#include "vpx/vp8dx.h"

#include <stdlib.h>
#include <string.h>

vpx_codec_err_t call_vpx_codec_dec_init(vpx_codec_ctx_t *codec, int vp9) {
	vpx_codec_iface_t *iface = vp9 ? vpx_codec_vp9_dx() : vpx_codec_vp8_dx();
	return vpx_codec_dec_init(codec, iface, NULL, 0);
}

int vpx_img_plane_width(const vpx_image_t *img, int plane) {
	if (plane > 0 && img->x_chroma_shift > 0)
		return (img->d_w + 1) >> img->x_chroma_shift;
	else
		return img->d_w;
}

int vpx_img_plane_height(const vpx_image_t *img, int plane) {
	if (plane > 0 && img->y_chroma_shift > 0)
		return (img->d_h + 1) >> img->y_chroma_shift;
	else
		return img->d_h;
}

// vpx_img_write packs Y, U, V planes of the image without stride padding.
void vpx_img_write(const vpx_image_t *src, unsigned char *dst) {
	for (int plane = 0; plane < 3; ++plane) {
		const unsigned char *buf = src->planes[plane];
		const int stride = src->stride[plane];
		const int w = vpx_img_plane_width(src, plane);
		const int h = vpx_img_plane_height(src, plane);

		for (int y = 0; y < h; ++y) {
			memcpy(dst, buf, w);
			buf += stride;
			dst += w;
		}
	}
}
*/
import "C"
import (
	"fmt"
	"image"
	"unsafe"

	"github.com/ui-xd/test-stream-sub001/pkg/codec"
)

type Vpx struct {
	ctx    C.vpx_codec_ctx_t
	closed bool
}

// NewDecoder makes a libvpx VP8 or VP9 decoder.
func NewDecoder(c codec.VideoCodec) (*Vpx, error) {
	vp9 := C.int(0)
	switch c {
	case codec.VP8:
	case codec.VP9:
		vp9 = 1
	default:
		return nil, codec.ErrUnsupported
	}
	d := &Vpx{}
	if C.call_vpx_codec_dec_init(&d.ctx, vp9) != C.VPX_CODEC_OK {
		return nil, fmt.Errorf("failed to initialize %v decoder", c)
	}
	return d, nil
}

func (vpx *Vpx) Decode(frame []byte) (image.Image, error) {
	if len(frame) == 0 {
		return nil, codec.ErrSkip
	}
	if C.vpx_codec_decode(&vpx.ctx, (*C.uint8_t)(unsafe.Pointer(&frame[0])), C.uint(len(frame)), nil, 0) != C.VPX_CODEC_OK {
		return nil, fmt.Errorf("failed to decode frame: %s", C.GoString(C.vpx_codec_error_detail(&vpx.ctx)))
	}
	var iter C.vpx_codec_iter_t
	img := C.vpx_codec_get_frame(&vpx.ctx, &iter)
	if img == nil {
		return nil, codec.ErrSkip
	}
	if img.fmt != C.VPX_IMG_FMT_I420 {
		return nil, fmt.Errorf("unsupported image format %v", img.fmt)
	}
	w, h := int(img.d_w), int(img.d_h)
	cw, ch := (w+1)/2, (h+1)/2
	buf := make([]byte, w*h+2*cw*ch)
	C.vpx_img_write(img, (*C.uchar)(unsafe.Pointer(&buf[0])))
	return &image.YCbCr{
		Y:              buf[:w*h],
		Cb:             buf[w*h : w*h+cw*ch],
		Cr:             buf[w*h+cw*ch:],
		YStride:        w,
		CStride:        cw,
		SubsampleRatio: image.YCbCrSubsampleRatio420,
		Rect:           image.Rect(0, 0, w, h),
	}, nil
}

func (vpx *Vpx) Close() error {
	if vpx.closed {
		return nil
	}
	vpx.closed = true
	if C.vpx_codec_destroy(&vpx.ctx) != C.VPX_CODEC_OK {
		return fmt.Errorf("failed to destroy decoder: %s", C.GoString(C.vpx_codec_error(&vpx.ctx)))
	}
	return nil
}
