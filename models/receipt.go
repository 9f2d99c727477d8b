package models

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"bitbucket.org/mmdatafocus/finops_backend/config"
	"bitbucket.org/mmdatafocus/finops_backend/utils"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MaxReceiptSizeBytes = 5 << 20
	receiptThumbWidth   = 320
)

var receiptExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

type ReceiptUpload struct {
	ObjectKey    string `json:"objectKey"`
	ImageUrl     string `json:"imageUrl"`
	ThumbnailUrl string `json:"thumbnailUrl"`
}

// sniffReceipt returns the content type and file extension of an accepted receipt image.
func sniffReceipt(data []byte) (string, string, error) {
	if len(data) == 0 {
		return "", "", utils.InvalidInput("receipt file is empty")
	}
	if len(data) > MaxReceiptSizeBytes {
		return "", "", utils.InvalidInput("receipt exceeds %dMB", MaxReceiptSizeBytes>>20)
	}
	contentType := http.DetectContentType(data)
	ext, ok := receiptExtensions[contentType]
	if !ok {
		return "", "", utils.InvalidInput("receipt must be a jpeg or png image, got %s", contentType)
	}
	return contentType, ext, nil
}

func generateThumbnail(original []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(original), imaging.AutoOrientation(true))
	if err != nil {
		return nil, utils.InvalidInput("receipt image cannot be decoded")
	}
	thumbnail := imaging.Resize(img, receiptThumbWidth, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumbnail, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func receiptObjectKey(transactionId int, ext string) string {
	return fmt.Sprintf("receipts/%d/%s%s", transactionId, uuid.NewString(), ext)
}

// UploadReceipt stores a receipt photo and its thumbnail, then points the transaction at it.
func UploadReceipt(ctx context.Context, transactionId int, data []byte) (*ReceiptUpload, error) {
	transaction, err := utils.FetchModel[Transaction](ctx, transactionId)
	if err != nil {
		return nil, err
	}
	if transaction.Status == TransactionStatusRejected {
		return nil, fmt.Errorf("%w: rejected transaction", utils.ErrInvalidTransition)
	}
	contentType, ext, err := sniffReceipt(data)
	if err != nil {
		return nil, err
	}
	thumb, err := generateThumbnail(data)
	if err != nil {
		return nil, err
	}

	objectKey := receiptObjectKey(transactionId, ext)
	thumbKey := utils.ThumbnailKey(objectKey)
	uploadCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()
	if err := utils.UploadBytesToGCS(uploadCtx, objectKey, data, contentType); err != nil {
		return nil, err
	}
	if err := utils.UploadBytesToGCS(uploadCtx, thumbKey, thumb, "image/jpeg"); err != nil {
		_ = utils.DeleteFromGCS(context.WithoutCancel(ctx), objectKey)
		return nil, err
	}

	previous := transaction.ReceiptReference
	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Transaction{}).Where("id = ?", transactionId).
			UpdateColumn("receipt_reference", objectKey).Error; err != nil {
			return err
		}
		return createHistory(tx, HistoryActionUpdate, transactionId, ReferenceTypeTransaction,
			map[string]string{"receiptReference": previous},
			map[string]string{"receiptReference": objectKey},
			"Uploaded Receipt")
	})
	if err != nil {
		_ = utils.DeleteFromGCS(context.WithoutCancel(ctx), objectKey)
		_ = utils.DeleteFromGCS(context.WithoutCancel(ctx), thumbKey)
		return nil, err
	}

	return &ReceiptUpload{
		ObjectKey:    objectKey,
		ImageUrl:     utils.BuildObjectAccessURL(objectKey),
		ThumbnailUrl: utils.BuildObjectAccessURL(thumbKey),
	}, nil
}
