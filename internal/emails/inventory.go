package emails

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"leadbringer/internal/imaging"
	"leadbringer/internal/models"
)

// Inventory catalogs the image content of one message without persisting
// anything. Used by the inspection tool to audit a mailbox before a run.
func Inventory(m *RawMessage) models.MessageInventory {
	inv := models.MessageInventory{Filename: m.Filename}

	msg, err := m.Message()
	if err != nil {
		inv.Error = err.Error()
		return inv
	}

	inv.Subject = DecodeHeader(msg.Header.Get("Subject"))
	inv.Sender = SenderAddress(msg.Header.Get("From"))
	inv.Date = msg.Header.Get("Date")

	walkParts(func(key string) string { return msg.Header.Get(key) }, msg.Body, func(p *leafPart) {
		if p.mediaType == "text/html" {
			inv.HasHTML = true
			return
		}
		if !strings.HasPrefix(p.mediaType, "image/") {
			return
		}

		data, err := decodePayload(p.body, p.encoding)
		if err != nil || len(data) == 0 {
			return
		}

		cid := strings.Trim(strings.TrimSpace(p.contentID), "<>")
		ext := imaging.ExtensionFor(p.mediaType)

		info := models.ImageInfo{
			SizeBytes:   len(data),
			ContentType: p.mediaType,
			ContentID:   cid,
			Extension:   ext,
			Embedded:    cid != "",
		}
		if cid != "" {
			info.SourceType = "cid"
			info.Filename = cid + ext
		} else {
			sum := md5.Sum(data)
			info.SourceType = "attachment"
			info.Filename = "img_" + hex.EncodeToString(sum[:]) + ext
		}

		inv.Images = append(inv.Images, info)
		inv.TotalImages++
		inv.TotalImageSize += len(data)
	})

	return inv
}
