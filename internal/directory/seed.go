package directory

import "github.com/nagarik-sewa/backend/internal/models"

// Seed returns a small built-in catalog so the server works without a
// scraped directory file. District administration offices plus the passport
// department, with the common citizen services.
func Seed() *Directory {
	daoServices := []models.OfficeService{
		{ID: "citizenship_certificate", Name: "Citizenship Certificate", NameNepali: "नागरिकता प्रमाणपत्र"},
		{ID: "passport_recommendation", Name: "Passport Recommendation", NameNepali: "राहदानी सिफारिस"},
		{ID: "name_correction", Name: "Name Correction", NameNepali: "नाम सच्याउने"},
	}
	return New([]models.Office{
		{
			ID: "dao_kathmandu", Name: "District Administration Office, Kathmandu",
			NameNepali: "जिल्ला प्रशासन कार्यालय, काठमाडौं",
			OfficeType: "district_administration_office",
			District:   "Kathmandu", Province: "Bagmati Province",
			Services: daoServices,
		},
		{
			ID: "dao_lalitpur", Name: "District Administration Office, Lalitpur",
			NameNepali: "जिल्ला प्रशासन कार्यालय, ललितपुर",
			OfficeType: "district_administration_office",
			District:   "Lalitpur", Province: "Bagmati Province",
			Services: daoServices,
		},
		{
			ID: "dao_bhaktapur", Name: "District Administration Office, Bhaktapur",
			NameNepali: "जिल्ला प्रशासन कार्यालय, भक्तपुर",
			OfficeType: "district_administration_office",
			District:   "Bhaktapur", Province: "Bagmati Province",
			Services: daoServices,
		},
		{
			ID: "dao_kaski", Name: "District Administration Office, Kaski",
			NameNepali: "जिल्ला प्रशासन कार्यालय, कास्की",
			OfficeType: "district_administration_office",
			District:   "Kaski", Province: "Gandaki Province",
			Services: daoServices,
		},
		{
			ID: "dao_morang", Name: "District Administration Office, Morang",
			NameNepali: "जिल्ला प्रशासन कार्यालय, मोरङ",
			OfficeType: "district_administration_office",
			District:   "Morang", Province: "Koshi Province",
			Services: daoServices,
		},
		{
			ID: "passport_dept_kathmandu", Name: "Department of Passports",
			NameNepali: "राहदानी विभाग",
			OfficeType: "passport_office",
			District:   "Kathmandu", Province: "Bagmati Province",
			Services: []models.OfficeService{
				{ID: "passport_new", Name: "New Passport", NameNepali: "नयाँ राहदानी"},
				{ID: "passport_renewal", Name: "Passport Renewal", NameNepali: "राहदानी नवीकरण"},
			},
		},
	})
}
