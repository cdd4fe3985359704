package auth

import (
	"errors"
	"time"

	"github.com/EltunLTN/autoparts-api/models"
	"gorm.io/gorm"
)

var errUnknownGuest = errors.New("unknown or expired guest")

// mergeGuestCartIntoUserCart moves a guest's cart lines into the user's cart and deletes the guest cart.
// Returns false when the guest had nothing to merge. Only ids of live guest sessions are merged.
func mergeGuestCartIntoUserCart(db *gorm.DB, guestID, userID string) (bool, error) {
	if guestID == "" || guestID == userID {
		return false, errUnknownGuest
	}

	merged := false
	err := db.Transaction(func(tx *gorm.DB) error {
		var guest models.GuestUser
		err := tx.Where("id = ?", guestID).First(&guest).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errUnknownGuest
		}
		if err != nil {
			return err
		}
		if guest.Expired(time.Now()) {
			return errUnknownGuest
		}

		var guestCart models.Cart
		err = tx.Preload("Items").Where("owner_id = ?", guestID).First(&guestCart).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if len(guestCart.Items) == 0 {
			return tx.Delete(&guestCart).Error
		}

		userCart, err := models.LoadCart(tx, userID)
		if err != nil {
			return err
		}

		for _, item := range guestCart.Items {
			item.ID = 0
			item.AddedAt = time.Now()
			userCart.AddItem(item)
		}
		if err := models.SaveCart(tx, userCart); err != nil {
			return err
		}

		if err := tx.Where("cart_id = ?", guestCart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&guestCart).Error; err != nil {
			return err
		}
		merged = true
		return nil
	})
	return merged, err
}

func mergeStatus(db *gorm.DB, guestID, userID string) string {
	if guestID == "" {
		return "no-guest-cart"
	}
	merged, err := mergeGuestCartIntoUserCart(db, guestID, userID)
	switch {
	case errors.Is(err, errUnknownGuest):
		return "no-guest-cart"
	case err != nil:
		return "merge-failed"
	case merged:
		return "merged-success"
	default:
		return "guest-cart-empty"
	}
}
