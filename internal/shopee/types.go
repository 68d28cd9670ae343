package shopee

import (
	"strconv"

	"github.com/nattapongc/shopscout/pkg/models"
)

// Upstream prices are integers scaled by 10^5.
const priceScale = 100000

// CategoryNode is one node of the upstream category tree.
type CategoryNode struct {
	Catid       int64          `json:"catid"`
	ParentCatid int64          `json:"parent_catid"`
	Level       int            `json:"level"`
	DisplayName string         `json:"display_name"`
	Children    []CategoryNode `json:"children"`
}

// FeedItem is one daily-discover entry. The feed mixes two shapes: an organic
// item_card and a sponsored ads_item_card. Record collapses them into the
// common projection, preferring the organic shape when both are present.
type FeedItem struct {
	ItemCard    *ItemCard    `json:"item_card,omitempty"`
	AdsItemCard *AdsItemCard `json:"ads_item_card,omitempty"`
}

type ItemCard struct {
	Item *ItemRecord `json:"item"`
}

type AdsItemCard struct {
	Ads *ItemRecord `json:"ads"`
}

// Record returns the underlying product record, or nil for entries carrying
// neither shape (banners and other non-product feed fillers).
func (f *FeedItem) Record() *ItemRecord {
	if f.ItemCard != nil && f.ItemCard.Item != nil {
		return f.ItemCard.Item
	}
	if f.AdsItemCard != nil && f.AdsItemCard.Ads != nil {
		return f.AdsItemCard.Ads
	}
	return nil
}

// ItemRecord is the raw product shape shared by organic and sponsored entries.
type ItemRecord struct {
	ItemID         int64      `json:"itemid"`
	Name           string     `json:"name"`
	Price          int64      `json:"price"`
	ItemRating     ItemRating `json:"item_rating"`
	Sold           int        `json:"sold"`
	ShopID         int64      `json:"shopid"`
	ShopName       string     `json:"shop_name"`
	ShopeeVerified bool       `json:"shopee_verified"`
	IsOfficialShop bool       `json:"is_official_shop"`
	Image          string     `json:"image"`
}

type ItemRating struct {
	RatingStar        float64 `json:"rating_star"`
	RcountWithContext int     `json:"rcount_with_context"`
	RcountWithImage   int     `json:"rcount_with_image"`
}

// Product maps the raw record into the accepted-product model, normalizing
// the scaled price and attaching the classifier score.
func (r *ItemRecord) Product(score float64, siteURL, cdnURL string) models.Product {
	itemID := strconv.FormatInt(r.ItemID, 10)
	shopID := strconv.FormatInt(r.ShopID, 10)

	imageURL := ""
	if r.Image != "" {
		imageURL = cdnURL + "/" + r.Image
	}

	return models.Product{
		ID:      itemID,
		Name:    r.Name,
		Price:   float64(r.Price) / priceScale,
		Rating:  r.ItemRating.RatingStar,
		Reviews: r.ItemRating.RcountWithContext,
		Sold:    r.Sold,
		Seller: models.Seller{
			ID:         shopID,
			Name:       r.ShopName,
			Verified:   r.ShopeeVerified,
			IsOfficial: r.IsOfficialShop,
		},
		ImageURL:            imageURL,
		URL:                 siteURL + "/product/" + shopID + "/" + itemID,
		ClassificationScore: score,
	}
}
