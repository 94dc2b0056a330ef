package repository

import "gorm.io/gorm"

// NewGormStore wires the gorm repositories over one connection.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Customers: NewCustomerRepository(db),
		Entries:   NewEntryRepository(db),
		Bills:     NewBillRepository(db),
		Payments:  NewPaymentEventRepository(db),
		Imports:   NewImportBatchRepository(db),
		Close: func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}
