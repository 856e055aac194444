package imgx

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif" // 注册 GIF 解码器
	"image/jpeg"
	_ "image/png" // 注册 PNG 解码器

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // 后端抓取的封面常见 webp
)

const (
	// MaxThumbWidth 是缩略图的最大宽度；更小的源图不放大。
	MaxThumbWidth = 640
	thumbQuality  = 85
)

// Cover16x9JPEG 把任意封面图居中裁切为 16:9，并缩放到最多 MaxThumbWidth 宽，编码为 JPEG。
//
// 约束：
// - 输入允许是 JPEG/PNG/GIF/WebP
// - 输出固定为 JPEG
// - 裁切规则：保留中心区域；源图比 16:9 宽则裁左右，比 16:9 高则裁上下
func Cover16x9JPEG(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, errors.New("图片为空")
	}

	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, errors.New("图片尺寸无效")
	}

	crop := centerCrop16x9(b)
	if crop.Dx() <= 0 || crop.Dy() <= 0 {
		return nil, errors.New("图片太小，无法裁切为 16:9")
	}

	w, h := crop.Dx(), crop.Dy()
	if w > MaxThumbWidth {
		w = MaxThumbWidth
		h = MaxThumbWidth * 9 / 16
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == crop.Dx() && h == crop.Dy() {
		draw.Draw(dst, dst.Bounds(), img, crop.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, crop, draw.Src, nil)
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: thumbQuality}); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// centerCrop16x9 返回 b 内最大的居中 16:9 矩形。
func centerCrop16x9(b image.Rectangle) image.Rectangle {
	w, h := b.Dx(), b.Dy()
	if w*9 > h*16 {
		// 太宽：按高度算宽度。
		cw := h * 16 / 9
		x0 := b.Min.X + (w-cw)/2
		return image.Rect(x0, b.Min.Y, x0+cw, b.Max.Y)
	}
	ch := w * 9 / 16
	y0 := b.Min.Y + (h-ch)/2
	return image.Rect(b.Min.X, y0, b.Max.X, y0+ch)
}
