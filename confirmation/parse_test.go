package confirmation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const listingHTML = `<html><body><div id="mobileconf_list">
<div class="mobileconf_list_entry" id="conf1734" data-confid="1734" data-key="9988776655" data-type="2" data-creator="4400123123">
  <div class="mobileconf_list_entry_content">
    <div class="mobileconf_list_entry_icon"><img src="https://cdn.example/trade1.png"></div>
    <div class="mobileconf_list_entry_description">
      <div>Trade with <b>Alice</b></div>
      <div>You give 1 item, you receive 2 items</div>
      <div>Just now</div>
    </div>
  </div>
</div>
<div class="mobileconf_list_entry" id="conf1735" data-confid="1735" data-key="1122334455" data-type="3" data-creator="5500456456">
  <div class="mobileconf_list_entry_content">
    <div class="mobileconf_list_entry_icon"><img src="https://cdn.example/market.png"></div>
    <div class="mobileconf_list_entry_description">
      <div>Sell - Mann Co. Supply Crate Key</div>
      <div>2,49&#8364;</div>
      <div>5 minutes ago</div>
    </div>
  </div>
</div>
<div class="mobileconf_list_entry" id="conf1736" data-confid="1736" data-key="6677889900" data-type="2" data-creator="4400123124">
  <div class="mobileconf_list_entry_description">
    <div>Trade with Bob</div>
    <div>You give 3 items</div>
    <div>1 hour ago</div>
  </div>
</div>
</div></body></html>`

func TestParseListing(t *testing.T) {
	confs, err := parseListing([]byte(listingHTML))
	require.NoError(t, err)
	require.Len(t, confs, 3)

	// Server order preserved.
	require.Equal(t, "1734", confs[0].ID)
	require.Equal(t, "1735", confs[1].ID)
	require.Equal(t, "1736", confs[2].ID)

	first := confs[0]
	require.Equal(t, "9988776655", first.Key)
	require.Equal(t, TypeTrade, first.Type)
	require.Equal(t, "4400123123", first.CreatorID)
	require.Equal(t, "https://cdn.example/trade1.png", first.Icon)
	// Embedded markup stripped.
	require.Equal(t, "Trade with Alice", first.Title)
	require.Equal(t, "You give 1 item, you receive 2 items", first.Summary)
	require.Equal(t, "Just now", first.Time)

	require.Equal(t, TypeMarket, confs[1].Type)
	require.Equal(t, CategoryMarket, confs[1].Category())
	require.Empty(t, confs[2].Icon)
}

func TestParseListingNothingToConfirm(t *testing.T) {
	body := `<html><body><div>Nothing to confirm</div></body></html>`
	confs, err := parseListing([]byte(body))
	require.NoError(t, err)
	require.Empty(t, confs)
}

func TestParseListingUnrecognized(t *testing.T) {
	_, err := parseListing([]byte(`<html><body><p>please sign in</p></body></html>`))
	require.ErrorIs(t, err, ErrCannotFindConfirmations)
}

func TestParseOfferID(t *testing.T) {
	body := `<html><body><div class="tradeoffer" id="tradeofferid_123456789"></div></body></html>`
	id, err := parseOfferID([]byte(body))
	require.NoError(t, err)
	require.Equal(t, uint64(123456789), id)
}

func TestParseOfferIDMissing(t *testing.T) {
	_, err := parseOfferID([]byte(`<html><body></body></html>`))
	require.ErrorIs(t, err, ErrCannotFindOffer)
}

func TestCategory(t *testing.T) {
	require.Equal(t, CategoryTrade, (&Confirmation{Type: 2}).Category())
	require.Equal(t, CategoryMarket, (&Confirmation{Type: 3}).Category())
	require.Equal(t, CategoryOther, (&Confirmation{Type: 1}).Category())
	require.Equal(t, CategoryOther, (&Confirmation{Type: 99}).Category())
}
