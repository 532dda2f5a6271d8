package billing

import (
	"errors"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"handyman-backend/models"
)

// GormEstimateStore is the Postgres-backed EstimateStore.
type GormEstimateStore struct {
	DB *gorm.DB
}

func (s *GormEstimateStore) Insert(e *models.Estimate) error {
	return s.DB.Create(e).Error
}

func (s *GormEstimateStore) Get(id string) (*models.Estimate, error) {
	var e models.Estimate
	if err := s.DB.Where("id = ?", id).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (s *GormEstimateStore) UpdateByID(id string, updates map[string]any) (bool, error) {
	res := s.DB.Model(&models.Estimate{}).Where("id = ?", id).Updates(updates)
	return res.RowsAffected > 0, res.Error
}

func (s *GormEstimateStore) DeleteByID(id string) (bool, error) {
	res := s.DB.Where("id = ?", id).Delete(&models.Estimate{})
	return res.RowsAffected > 0, res.Error
}

func (s *GormEstimateStore) List(f DocumentFilter) ([]models.Estimate, error) {
	q := s.DB.Model(&models.Estimate{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ClientID != "" {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.Query != "" {
		like := "%" + strings.ToLower(f.Query) + "%"
		q = q.Where("LOWER(client_name) LIKE ? OR LOWER(code) LIKE ? OR LOWER(service_name) LIKE ?", like, like, like)
	}
	var out []models.Estimate
	err := q.Order("created_at DESC").Find(&out).Error
	return out, err
}

func (s *GormEstimateStore) NextSeq() (int, error) {
	var code string
	err := s.DB.Model(&models.Estimate{}).Select("code").Order("code DESC").Limit(1).Scan(&code).Error
	if err != nil {
		return 0, err
	}
	return parseCodeSeq(code) + 1, nil
}

// GormInvoiceStore is the Postgres-backed InvoiceStore.
type GormInvoiceStore struct {
	DB *gorm.DB
}

func (s *GormInvoiceStore) Insert(inv *models.Invoice) error {
	return s.DB.Create(inv).Error
}

func (s *GormInvoiceStore) Get(id string) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.DB.Where("id = ?", id).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (s *GormInvoiceStore) UpdateByID(id string, updates map[string]any) (bool, error) {
	res := s.DB.Model(&models.Invoice{}).Where("id = ?", id).Updates(updates)
	return res.RowsAffected > 0, res.Error
}

func (s *GormInvoiceStore) DeleteByID(id string) (bool, error) {
	res := s.DB.Where("id = ?", id).Delete(&models.Invoice{})
	return res.RowsAffected > 0, res.Error
}

func (s *GormInvoiceStore) List(f DocumentFilter) ([]models.Invoice, error) {
	q := s.DB.Model(&models.Invoice{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ClientID != "" {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.Query != "" {
		like := "%" + strings.ToLower(f.Query) + "%"
		q = q.Where("LOWER(client_name) LIKE ? OR LOWER(code) LIKE ?", like, like)
	}
	var out []models.Invoice
	err := q.Order("created_at DESC").Find(&out).Error
	return out, err
}

func (s *GormInvoiceStore) NextSeq() (int, error) {
	var code string
	err := s.DB.Model(&models.Invoice{}).Select("code").Order("code DESC").Limit(1).Scan(&code).Error
	if err != nil {
		return 0, err
	}
	return parseCodeSeq(code) + 1, nil
}

// parseCodeSeq extracts the numeric tail of a document code ("EST-0012" ->
// 12). Codes are zero-padded, so ORDER BY code picks the highest sequence.
func parseCodeSeq(code string) int {
	i := strings.LastIndexByte(code, '-')
	if i < 0 {
		return 0
	}
	n, err := strconv.Atoi(code[i+1:])
	if err != nil {
		return 0
	}
	return n
}

// GormDirectory resolves clients, services and bookings for snapshotting.
type GormDirectory struct {
	DB *gorm.DB
}

func (d *GormDirectory) GetClient(id string) (*models.Client, error) {
	var c models.Client
	if err := d.DB.Where("id = ?", id).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (d *GormDirectory) GetService(id string) (*models.Service, error) {
	var svc models.Service
	if err := d.DB.Where("id = ?", id).First(&svc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &svc, nil
}

func (d *GormDirectory) GetBooking(id string) (*models.Booking, error) {
	var b models.Booking
	if err := d.DB.Where("id = ?", id).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}
