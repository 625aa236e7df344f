package models

// ProductOffer is the structured record produced for each distinct offer
// email after deduplication. Fields are best-effort: extraction misses are
// empty strings, never errors.
type ProductOffer struct {
	Title              string   `json:"title"`
	Category           string   `json:"category"`
	ProductDescription string   `json:"product_description"`
	Price              string   `json:"price"`
	FOBLocation        string   `json:"fob_location"`
	AvailableQuantity  string   `json:"available_quantity"`
	Thickness          string   `json:"thickness"`
	WearLayer          string   `json:"wear_layer"`
	Dimensions         string   `json:"dimensions"`
	PrimaryImage       string   `json:"primary_image"`
	MoreImages         []string `json:"more_images"`
	SourceEmail        string   `json:"source_email"`
	DateReceived       string   `json:"date_received"`
	MessageID          string   `json:"message_id"`
	Status             string   `json:"status"`
}

// StatusUnreviewed is the initial status of every new offer.
const StatusUnreviewed = "Unreviewed"

// ImageOrigin identifies where an image resource came from.
type ImageOrigin string

const (
	OriginAttachment  ImageOrigin = "inline-attachment"
	OriginContentID   ImageOrigin = "content-id-reference"
	OriginBase64      ImageOrigin = "base64-inline"
	OriginExternalURL ImageOrigin = "external-url"
)

// ImageResource is a single image recovered from a message. For MIME-borne
// images Data holds the decoded bytes; for HTML-referenced images only URL is
// set. Filename is deterministic: derived from the Content-ID when present,
// otherwise from a hash of the bytes, so repeated runs map the same image to
// the same file.
type ImageResource struct {
	Origin      ImageOrigin `json:"origin"`
	URL         string      `json:"url,omitempty"`
	ContentType string      `json:"content_type"`
	ContentID   string      `json:"content_id,omitempty"`
	Extension   string      `json:"extension"`
	Filename    string      `json:"filename"`
	Data        []byte      `json:"-"`
}
