package db

import (
	"topup_store/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus"

	"gorm.io/driver/mysql" // MySQL driver for GORM
	"gorm.io/gorm"         // GORM ORM library
)

// Migrate performs automatic migration for the database schema and seeds
// the default configuration
func Migrate(dsn string) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true}) // Open a connection to the database
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err) // Log fatal error if connection fails
	}
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	err = db.AutoMigrate(
		&domain.User{},
		&domain.Offer{},
		&domain.Order{},
		&domain.Deposit{},
		&domain.Notification{},
		&domain.AppSettings{},
		&domain.PaymentMethod{},
		&domain.SupportContact{},
		&domain.Banner{},
		&domain.AdUnit{},
	)
	if err != nil {
		logrus.Fatalf("migration failed: %v", err) // Log fatal error if migration fails
	}
	Seed(db)
	logrus.Info("Migration completed.") // Log successful migration
}

// Seed creates the singleton settings row and a starter catalog if the
// database is empty. Safe to run repeatedly.
func Seed(db *gorm.DB) {
	// Settings row with the storefront defaults
	var count int64
	db.Model(&domain.AppSettings{}).Count(&count)
	if count == 0 {
		settings := domain.AppSettings{
			ID:                1,
			AppName:           "Top-Up Store",
			ShowDiamonds:      true,
			ShowLevelUp:       true,
			ShowMembership:    true,
			ShowPremium:       true,
			ShowEarn:          true,
			DepositMin:        20,
			DepositMax:        10000,
			DailyAdLimit:      20,
			RewardPerAd:       5,
			AdCooldownSeconds: 10,
			ResetHours:        24,
			WebAdActive:       true,
			WebAdDuration:     15,
		}
		if err := db.Create(&settings).Error; err != nil {
			logrus.Warnf("failed to seed settings: %v", err)
		}
	}
	// Starter diamond bundles so the storefront isn't empty on first boot
	db.Model(&domain.Offer{}).Count(&count)
	if count == 0 {
		offers := []domain.Offer{
			{Kind: domain.OfferDiamond, Name: "25 Diamonds", Diamonds: 25, Price: 25, InputType: domain.InputUID, Active: true},
			{Kind: domain.OfferDiamond, Name: "100 Diamonds", Diamonds: 100, Price: 90, InputType: domain.InputUID, Active: true},
			{Kind: domain.OfferDiamond, Name: "310 Diamonds", Diamonds: 310, Price: 240, InputType: domain.InputUID, Active: true},
			{Kind: domain.OfferLevelUp, Name: "Level 10 Pack", Price: 120, InputType: domain.InputUID, Active: true},
			{Kind: domain.OfferMembership, Name: "Weekly Membership", Price: 160, InputType: domain.InputUID, Active: true},
			{Kind: domain.OfferPremium, Name: "Premium App (1 Month)", Price: 200, InputType: domain.InputEmail, Active: true},
		}
		if err := db.Create(&offers).Error; err != nil {
			logrus.Warnf("failed to seed offers: %v", err)
		}
	}
}
