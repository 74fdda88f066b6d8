package usecase

import "eateryApi/internal/modules/dining/domain"

func fixtureHalls() []domain.DiningHall {
	return []domain.DiningHall{
		{ID: "north_star", Name: "North Star", Summary: "North Star Summary", PaymentMethods: []domain.PaymentMethod{domain.PaymentBRB, domain.PaymentCash, domain.PaymentSwipe}, Hours: []domain.TimeRange{}},
		{ID: "104west", Name: "104 West", Summary: "104 West Summary", PaymentMethods: []domain.PaymentMethod{domain.PaymentBRB, domain.PaymentSwipe}, Hours: []domain.TimeRange{}},
		{ID: "cascadeli", Name: "Cascadeli", Summary: "Cascadeli Summary", PaymentMethods: []domain.PaymentMethod{domain.PaymentCash, domain.PaymentSwipe}, Hours: []domain.TimeRange{}},
		{ID: "okenshields", Name: "Okenshields", Summary: "Okenshields Summary", PaymentMethods: []domain.PaymentMethod{domain.PaymentBRB, domain.PaymentCash}, Hours: []domain.TimeRange{}},
		{ID: "goldies", Name: "Goldies", Summary: "Goldies Summary", PaymentMethods: []domain.PaymentMethod{domain.PaymentBRB, domain.PaymentCash}, Hours: []domain.TimeRange{}},
		{ID: "ivy_room", Name: "Ivy Room", Summary: "Ivy Room Summary", PaymentMethods: []domain.PaymentMethod{domain.PaymentBRB, domain.PaymentCash}, Hours: []domain.TimeRange{}},
	}
}

// LoadFixtures seeds the collection with sample halls for offline development. Existing entries
// with the same ids are replaced.
func (m *DataManager) LoadFixtures() {
	for _, hall := range fixtureHalls() {
		m.upsert(hall)
	}
}
