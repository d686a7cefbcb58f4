package matching

import (
	"fmt"
	"math"

	"resource-workers/internal/catalog"
)

const earthRadiusKm = 6371.0

// factorResult is one factor's score in [0,1] and the reason for it.
type factorResult struct {
	score       float64
	explanation string
}

func languageMatch(r *catalog.Resource, req normalizedRequest) factorResult {
	if req.language == "" {
		return factorResult{1.0, "No language preference specified - all resources considered"}
	}
	if r.SupportsLanguage(req.language) {
		return factorResult{1.0, fmt.Sprintf("Perfect match - resource supports %s", req.language)}
	}
	return factorResult{0.0, fmt.Sprintf("No match - resource does not support %s", req.language)}
}

func geographicProximity(r *catalog.Resource, req normalizedRequest, maxDistanceKm float64) factorResult {
	if req.hasPosition {
		lat, lon, ok := r.Location()
		if !ok {
			return factorResult{0.0, "No location data available for resource"}
		}
		d := haversineKm(req.lat, req.lon, lat, lon)
		return factorResult{
			score:       math.Max(0, 1-d/maxDistanceKm),
			explanation: fmt.Sprintf("Resource is %.1f km away from your location", d),
		}
	}

	if req.zipcode == "" {
		return factorResult{1.0, "No location specified - all resources considered"}
	}
	if r.ServesZipcode(req.zipcode) {
		return factorResult{1.0, fmt.Sprintf("Perfect match - resource serves zipcode %s", req.zipcode)}
	}
	return factorResult{0.0, fmt.Sprintf("No match - resource does not serve zipcode %s", req.zipcode)}
}

func incomeEligibility(r *catalog.Resource, req normalizedRequest) factorResult {
	if req.income == "" {
		return factorResult{1.0, "No income information provided - all resources considered"}
	}
	if !r.IncomeRestricted() {
		return factorResult{1.0, "No income requirements specified for this resource"}
	}
	if r.ServesIncomeBracket(req.income) {
		return factorResult{1.0, fmt.Sprintf("Perfect match - resource serves your income bracket (%s)", req.income)}
	}
	return factorResult{0.0, fmt.Sprintf("No match - resource does not serve your income bracket (%s)", req.income)}
}

func serviceAvailability(r *catalog.Resource) factorResult {
	details := r.ServiceDetails
	if details.AppointmentRequired == nil {
		return factorResult{0.5, "Availability information not specified"}
	}
	if details.WalkInAccepted != nil && *details.WalkInAccepted {
		return factorResult{1.0, "High availability - walk-in services accepted"}
	}
	return factorResult{0.7, "Moderate availability - appointments required"}
}

func specializedServices(r *catalog.Resource, req normalizedRequest) factorResult {
	if req.category == "" {
		return factorResult{1.0, "No category specified - all resources considered"}
	}
	if !r.CategoryIs(req.category) {
		have := r.BasicInfo.Category
		if have == "" {
			have = "unspecified"
		}
		return factorResult{0.0, fmt.Sprintf("No match - resource category (%s) does not match requested category (%s)", have, req.category)}
	}
	if req.subcategory == "" {
		return factorResult{1.0, fmt.Sprintf("Perfect match - resource matches requested category (%s)", req.category)}
	}
	if r.OffersSubcategory(req.subcategory) {
		return factorResult{1.0, fmt.Sprintf("Perfect match - resource offers requested subcategory (%s)", req.subcategory)}
	}
	return factorResult{0.5, "Partial match - resource matches category but not subcategory"}
}

// haversineKm is the great-circle distance between two points in kilometres.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
