package market

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"nftmarket/core/types"
)

const (
	EventTypeOrderCreated     = "market.order.created"
	EventTypeOrderRemoved     = "market.order.removed"
	EventTypeOrderCompleted   = "market.order.completed"
	EventTypeListingCreated   = "market.listing.created"
	EventTypeOfferPlaced      = "market.listing.offer_placed"
	EventTypeOfferWithdrawn   = "market.listing.offer_withdrawn"
	EventTypeListingRemoved   = "market.listing.removed"
	EventTypeListingCompleted = "market.listing.completed"
	EventTypeAuctionCreated   = "market.auction.created"
	EventTypeBidPlaced        = "market.auction.bid_placed"
	EventTypeAuctionClaimed   = "market.auction.claimed"
)

// NewOrderCreatedEvent returns the canonical payload for a newly created order.
func NewOrderCreatedEvent(e *Entry) *types.Event {
	evt := newEntryEvent(EventTypeOrderCreated, e)
	if e != nil && e.Price != nil {
		evt.Attributes["price"] = e.Price.String()
	}
	return evt
}

// NewOrderRemovedEvent returns the payload emitted when an order is cancelled
// and its asset returned to the owner.
func NewOrderRemovedEvent(e *Entry) *types.Event {
	return newEntryEvent(EventTypeOrderRemoved, e)
}

// NewOrderCompletedEvent returns the payload emitted when an order is bought.
func NewOrderCompletedEvent(e *Entry, buyer [20]byte, b Breakdown) *types.Event {
	evt := newEntryEvent(EventTypeOrderCompleted, e)
	evt.Attributes["buyer"] = hex.EncodeToString(buyer[:])
	addBreakdown(evt, b)
	return evt
}

// NewListingCreatedEvent returns the payload for a newly created listing.
func NewListingCreatedEvent(e *Entry) *types.Event {
	return newEntryEvent(EventTypeListingCreated, e)
}

// NewOfferPlacedEvent returns the payload emitted when a claim replaces the
// current offer on a listing.
func NewOfferPlacedEvent(e *Entry) *types.Event {
	evt := newEntryEvent(EventTypeOfferPlaced, e)
	if e != nil {
		evt.Attributes["offeror"] = hex.EncodeToString(e.Offeror[:])
		if e.CurrentOffer != nil {
			evt.Attributes["amount"] = e.CurrentOffer.String()
		}
	}
	return evt
}

// NewOfferWithdrawnEvent returns the payload emitted when the current claimant
// withdraws an offer after the cooling-off window.
func NewOfferWithdrawnEvent(e *Entry, claimant [20]byte, amount *big.Int) *types.Event {
	evt := newEntryEvent(EventTypeOfferWithdrawn, e)
	evt.Attributes["offeror"] = hex.EncodeToString(claimant[:])
	if amount != nil {
		evt.Attributes["amount"] = amount.String()
	}
	return evt
}

// NewListingRemovedEvent returns the payload emitted when a listing is
// cancelled by its owner.
func NewListingRemovedEvent(e *Entry) *types.Event {
	return newEntryEvent(EventTypeListingRemoved, e)
}

// NewListingCompletedEvent returns the payload emitted when the owner accepts
// the current offer.
func NewListingCompletedEvent(e *Entry, b Breakdown) *types.Event {
	evt := newEntryEvent(EventTypeListingCompleted, e)
	if e != nil {
		evt.Attributes["offeror"] = hex.EncodeToString(e.Offeror[:])
	}
	addBreakdown(evt, b)
	return evt
}

// NewAuctionCreatedEvent returns the payload for a newly created auction.
func NewAuctionCreatedEvent(e *Entry) *types.Event {
	evt := newEntryEvent(EventTypeAuctionCreated, e)
	if e != nil {
		evt.Attributes["endsAt"] = strconv.FormatInt(e.EndsAt, 10)
	}
	return evt
}

// NewBidPlacedEvent returns the payload emitted when a bid replaces the
// current one.
func NewBidPlacedEvent(e *Entry) *types.Event {
	evt := newEntryEvent(EventTypeBidPlaced, e)
	if e != nil {
		evt.Attributes["bidder"] = hex.EncodeToString(e.Bidder[:])
		if e.CurrentBid != nil {
			evt.Attributes["amount"] = e.CurrentBid.String()
		}
	}
	return evt
}

// NewAuctionClaimedEvent returns the payload emitted when an ended auction is
// claimed, whether or not it attracted bids.
func NewAuctionClaimedEvent(e *Entry, b Breakdown) *types.Event {
	evt := newEntryEvent(EventTypeAuctionClaimed, e)
	if e != nil {
		evt.Attributes["bidder"] = hex.EncodeToString(e.Bidder[:])
	}
	addBreakdown(evt, b)
	return evt
}

func newEntryEvent(eventType string, e *Entry) *types.Event {
	attrs := make(map[string]string)
	evt := &types.Event{Type: eventType, Attributes: attrs}
	if e == nil {
		return evt
	}
	attrs["id"] = hex.EncodeToString(e.ID[:])
	attrs["kind"] = e.Kind.String()
	attrs["assetContract"] = hex.EncodeToString(e.AssetContract[:])
	if e.AssetID != nil {
		attrs["assetId"] = e.AssetID.String()
	}
	attrs["quantity"] = strconv.FormatUint(e.Quantity, 10)
	attrs["creator"] = hex.EncodeToString(e.Creator[:])
	attrs["createdAt"] = strconv.FormatInt(e.CreatedAt, 10)
	return evt
}

func addBreakdown(evt *types.Event, b Breakdown) {
	if b.SellerProceeds != nil {
		evt.Attributes["sellerProceeds"] = b.SellerProceeds.String()
	}
	if b.FeeAmount != nil && b.FeeAmount.Sign() > 0 {
		evt.Attributes["fee"] = b.FeeAmount.String()
	}
	if b.RoyaltyAmount != nil && b.RoyaltyAmount.Sign() > 0 {
		evt.Attributes["royalty"] = b.RoyaltyAmount.String()
		evt.Attributes["royaltyReceiver"] = hex.EncodeToString(b.RoyaltyReceiver[:])
	}
}
