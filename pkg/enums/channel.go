package enums

import "fmt"

// Channel is the distribution pathway for outbound stock. It is a first-class
// field on movements and transactions so reporting never has to sniff notes.
type Channel string

const (
	ChannelSale     Channel = "sale"
	ChannelShopify  Channel = "shopify"
	ChannelPreOrder Channel = "pre_order"
	ChannelPR       Channel = "pr"
	ChannelFnF      Channel = "fnf"
	ChannelTransfer Channel = "transfer"
)

var validChannels = []Channel{
	ChannelSale,
	ChannelShopify,
	ChannelPreOrder,
	ChannelPR,
	ChannelFnF,
	ChannelTransfer,
}

// String implements fmt.Stringer.
func (c Channel) String() string {
	return string(c)
}

// IsValid reports whether the value is a known Channel.
func (c Channel) IsValid() bool {
	for _, candidate := range validChannels {
		if candidate == c {
			return true
		}
	}
	return false
}

// IsDispatch reports whether the channel ships warehouse stock outward
// (everything except the POS floor sale and the internal transfer).
func (c Channel) IsDispatch() bool {
	switch c {
	case ChannelShopify, ChannelPreOrder, ChannelPR, ChannelFnF:
		return true
	}
	return false
}

// DisplayName returns the label used on recipient prompts and notes.
func (c Channel) DisplayName() string {
	switch c {
	case ChannelSale:
		return "POS Sale"
	case ChannelShopify:
		return "Shopify"
	case ChannelPreOrder:
		return "Pre-Order"
	case ChannelPR:
		return "PR/Gift"
	case ChannelFnF:
		return "Family & Friends"
	case ChannelTransfer:
		return "Transfer"
	}
	return string(c)
}

// ParseChannel converts raw input into a Channel.
func ParseChannel(value string) (Channel, error) {
	for _, candidate := range validChannels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid channel %q", value)
}
