package emails

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"leadbringer/internal/imaging"
	"leadbringer/internal/models"
)

// ImageSink persists decoded image bytes under a derived filename.
type ImageSink interface {
	Save(name string, data []byte) (string, error)
}

// Decoded is the result of decoding one message.
type Decoded struct {
	Body   string // canonical plain text, HTML-preferred
	HTML   string // raw HTML part when present, for image harvesting
	Images []models.ImageResource
}

// ImageFilenames returns the stored filenames in capture order.
func (d *Decoded) ImageFilenames() []string {
	names := make([]string, 0, len(d.Images))
	for _, img := range d.Images {
		names = append(names, img.Filename)
	}
	return names
}

// Decoder walks the MIME tree of a message, selecting the best body text and
// persisting every image part through the sink. Per-part decoding failures
// skip the part; they never fail the whole message.
type Decoder struct {
	sink   ImageSink
	logger zerolog.Logger
}

// NewDecoder returns a decoder persisting images through the given sink.
func NewDecoder(sink ImageSink, logger zerolog.Logger) *Decoder {
	return &Decoder{sink: sink, logger: logger}
}

// leafPart is one leaf of the MIME tree with its raw (still transfer-encoded)
// payload reader.
type leafPart struct {
	mediaType   string
	params      map[string]string
	disposition string
	contentID   string
	encoding    string
	body        io.Reader
}

// Decode produces the canonical body and the persisted image resources of a
// message.
func (d *Decoder) Decode(msg *mail.Message) (*Decoded, error) {
	var htmlBody, plainBody string
	var images []models.ImageResource

	walkParts(func(key string) string { return msg.Header.Get(key) }, msg.Body, func(p *leafPart) {
		if strings.HasPrefix(p.mediaType, "image/") {
			if img, ok := d.saveImagePart(p); ok {
				images = append(images, img)
			}
			return
		}

		// Attachments are scanned for images above but never used as body.
		if strings.Contains(strings.ToLower(p.disposition), "attachment") {
			return
		}

		switch {
		case p.mediaType == "text/html" && htmlBody == "":
			if text, ok := d.decodeText(p); ok {
				htmlBody = text
			}
		case p.mediaType == "text/plain" && plainBody == "":
			if text, ok := d.decodeText(p); ok {
				plainBody = text
			}
		}
	})

	body := strings.TrimSpace(plainBody)
	if htmlBody != "" {
		body = htmlToText(htmlBody)
		images = append(images, d.saveInlineImages(htmlBody, images)...)
	}

	return &Decoded{Body: body, HTML: htmlBody, Images: images}, nil
}

// saveInlineImages persists base64 data-URI images embedded in the HTML body.
// Hash-derived filenames keep re-decoding the same message idempotent.
func (d *Decoder) saveInlineImages(html string, existing []models.ImageResource) []models.ImageResource {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	seen := make(map[string]bool, len(existing))
	for _, img := range existing {
		seen[img.Filename] = true
	}

	var images []models.ImageResource
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		if !strings.HasPrefix(src, "data:image/") {
			return
		}
		meta, payload, ok := strings.Cut(src, ",")
		if !ok || !strings.Contains(meta, "base64") {
			return
		}

		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil || len(data) == 0 {
			return
		}

		contentType := strings.TrimSuffix(strings.TrimPrefix(meta, "data:"), ";base64")
		ext := imaging.ExtensionFor(contentType)
		sum := md5.Sum(data)
		filename := "img_" + hex.EncodeToString(sum[:]) + ext
		if seen[filename] {
			return
		}
		seen[filename] = true

		if _, err := d.sink.Save(filename, data); err != nil {
			d.logger.Error().Err(err).Str("filename", filename).Msg("Could not write image")
			return
		}
		images = append(images, models.ImageResource{
			Origin:      models.OriginBase64,
			ContentType: contentType,
			Extension:   ext,
			Filename:    filename,
			Data:        data,
		})
	})
	return images
}

// saveImagePart decodes and persists one image part. Parts with no decodable
// payload are skipped.
func (d *Decoder) saveImagePart(p *leafPart) (models.ImageResource, bool) {
	data, err := decodePayload(p.body, p.encoding)
	if err != nil || len(data) == 0 {
		return models.ImageResource{}, false
	}

	cid := strings.Trim(strings.TrimSpace(p.contentID), "<>")
	ext := imaging.ExtensionFor(p.mediaType)

	img := models.ImageResource{
		ContentType: p.mediaType,
		ContentID:   cid,
		Extension:   ext,
	}
	if cid != "" {
		img.Origin = models.OriginContentID
		img.Filename = cid + ext
	} else {
		sum := md5.Sum(data)
		img.Origin = models.OriginAttachment
		img.Filename = "img_" + hex.EncodeToString(sum[:]) + ext
	}
	img.Data = data

	if _, err := d.sink.Save(img.Filename, data); err != nil {
		d.logger.Error().Err(err).Str("filename", img.Filename).Msg("Could not write image")
		return models.ImageResource{}, false
	}
	return img, true
}

// decodeText decodes a text part's payload and converts its charset to UTF-8.
func (d *Decoder) decodeText(p *leafPart) (string, bool) {
	data, err := decodePayload(p.body, p.encoding)
	if err != nil {
		return "", false
	}
	return string(decodeCharset(data, p.params["charset"])), true
}

// walkParts visits every leaf of a MIME tree in document order. Malformed
// branches are abandoned silently so one bad part cannot sink the message.
func walkParts(get func(string) string, body io.Reader, visit func(*leafPart)) {
	mediaType, params := parseContentType(get("Content-Type"))

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return
		}
		mr := multipart.NewReader(body, boundary)
		for {
			part, err := mr.NextPart()
			if err != nil {
				return
			}
			walkParts(part.Header.Get, part, visit)
		}
	}

	visit(&leafPart{
		mediaType:   mediaType,
		params:      params,
		disposition: get("Content-Disposition"),
		contentID:   get("Content-ID"),
		encoding:    get("Content-Transfer-Encoding"),
		body:        body,
	})
}

// parseContentType parses a Content-Type header, defaulting to text/plain
// when the header is absent or malformed.
func parseContentType(contentType string) (string, map[string]string) {
	if contentType == "" {
		return "text/plain", map[string]string{}
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "text/plain", map[string]string{}
	}
	if params == nil {
		params = map[string]string{}
	}
	return strings.ToLower(mediaType), params
}

// decodePayload reverses the content transfer encoding of a part.
func decodePayload(body io.Reader, encoding string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "quoted-printable":
		body = quotedprintable.NewReader(body)
	case "base64":
		body = base64.NewDecoder(base64.StdEncoding, body)
	}
	return io.ReadAll(body)
}

// decodeCharset converts text bytes to UTF-8, returning the input unchanged
// when the charset is unknown or conversion fails.
func decodeCharset(data []byte, charset string) []byte {
	charset = strings.TrimSpace(charset)
	if charset == "" || strings.EqualFold(charset, "utf-8") || strings.EqualFold(charset, "us-ascii") {
		return data
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return data
	}
	decoded, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return data
	}
	return decoded
}

// htmlToText flattens HTML markup into plain text with collapsed whitespace.
func htmlToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}
