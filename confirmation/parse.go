package confirmation

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// parseListing extracts confirmations from the mobileconf HTML. The
// scraping is a protocol dependency, not a design choice: this is the
// only surface the vendor exposes, and it is isolated here so a future
// structured endpoint only changes this step.
func parseListing(body []byte) ([]*Confirmation, error) {
	if bytes.Contains(body, []byte("Nothing to confirm")) {
		return []*Confirmation{}, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	entries := doc.Find(".mobileconf_list_entry")
	if entries.Length() == 0 {
		return nil, ErrCannotFindConfirmations
	}

	confs := make([]*Confirmation, 0, entries.Length())
	entries.Each(func(_ int, entry *goquery.Selection) {
		conf := &Confirmation{
			ID:        entry.AttrOr("data-confid", ""),
			Key:       entry.AttrOr("data-key", ""),
			CreatorID: entry.AttrOr("data-creator", ""),
		}
		if typeCode, err := strconv.Atoi(entry.AttrOr("data-type", "")); err == nil {
			conf.Type = typeCode
		}
		if icon := entry.Find(".mobileconf_list_entry_icon img"); icon.Length() > 0 {
			conf.Icon = icon.AttrOr("src", "")
		}

		// Description block: title, summary, age - in that order, with
		// any embedded markup reduced to text.
		desc := entry.Find(".mobileconf_list_entry_description").Children()
		desc.Each(func(i int, line *goquery.Selection) {
			text := strings.TrimSpace(line.Text())
			switch i {
			case 0:
				conf.Title = text
			case 1:
				conf.Summary = text
			case 2:
				conf.Time = text
			}
		})

		confs = append(confs, conf)
	})

	return confs, nil
}

// parseOfferID pulls the trade offer id out of a confirmation details
// page, where the offer element carries id="tradeofferid_<n>".
func parseOfferID(body []byte) (uint64, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return 0, err
	}

	value, ok := doc.Find(".tradeoffer").Attr("id")
	if !ok {
		return 0, ErrCannotFindOffer
	}
	parts := strings.Split(value, "_")
	if len(parts) < 2 {
		return 0, ErrCannotFindOffer
	}
	offerID, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return 0, ErrCannotFindOffer
	}
	return offerID, nil
}
