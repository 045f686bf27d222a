package dexshare

// Region selects the Dexcom Share deployment serving a user's data.
// Each region has its own base URL and application identifier; a user's
// credentials are only valid against the deployment they registered with.
type Region string

const (
	// RegionUS is the United States deployment.
	RegionUS Region = "us"
	// RegionOUS is the outside-of-US deployment.
	RegionOUS Region = "ous"
	// RegionJP is the Japan (Asia-Pacific) deployment.
	RegionJP Region = "jp"
)

// baseURLs maps each region to its Share API base URL.
var baseURLs = map[Region]string{
	RegionUS:  "https://share2.dexcom.com/ShareWebServices/Services",
	RegionOUS: "https://shareous1.dexcom.com/ShareWebServices/Services",
	RegionJP:  "https://share.dexcom.jp/ShareWebServices/Services",
}

// applicationIDs maps each region to the application UUID the Share API
// expects on authentication and login calls. US and OUS share one ID.
var applicationIDs = map[Region]string{
	RegionUS:  "d89443d2-327c-4a6f-89e5-496bbb0317db",
	RegionOUS: "d89443d2-327c-4a6f-89e5-496bbb0317db",
	RegionJP:  "d8665ade-9673-4e27-9ff6-92db4ce13d13",
}

// Share API endpoints, relative to the regional base URL. All are POST.
const (
	authenticateEndpoint    = "General/AuthenticatePublisherAccount"
	loginByIDEndpoint       = "General/LoginPublisherAccountById"
	glucoseReadingsEndpoint = "Publisher/ReadPublisherLatestGlucoseValues"
)

const (
	// MaxMinutes is the largest lookback window accepted by the readings
	// endpoint: 24 hours.
	MaxMinutes = 1440

	// MaxMaxCount is the largest reading count accepted by the readings
	// endpoint: one reading per 5 minutes over 24 hours.
	MaxMaxCount = 288
)

// mmolLConversionFactor converts a mg/dL value to mmol/L.
const mmolLConversionFactor = 0.0555
