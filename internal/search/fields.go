// internal/search/fields.go
package search

// Searchable field lists per entity and audience. Near-duplicate lists are
// kept apart on purpose: each variant answers exactly like the resolver it
// backs, so do not merge them.

// DocketFieldsForFleet is matched by getDocketsForFleet.
var DocketFieldsForFleet = []string{
	"docketData.jobId",
	"docketData.individualDocketNumber",
	"docketData.date",
	"docketData.time",
	"docketData.vehicleRegistration",
	"docketData.driverName",
	"docketData.collectionPointName",
	"docketData.collectionPointAddress.addressLine1",
	"docketData.collectionPointAddress.addressLine2",
	"docketData.collectionPointAddress.town",
	"docketData.collectionPointAddress.county",
	"docketData.collectionPointAddress.eircode",
	"docketData.collectionPointAddress.country",
	"docketData.wasteLines.description",
	"docketData.wasteLines.lowCode",
	"docketData.additionalInformation",
	"docketData.portOfExport",
	"docketData.countryOfDestination",
	"docketData.tfsReferenceNumber",
	"creatorEmail",
	"customerContact.customerName",
	"customerContact.customerEmail",
	"customerContact.customerPhone",
	"customerContact.customerAddress.addressLine1",
	"customerContact.customerAddress.town",
	"destinationFacility.destinationFacilityData.destinationFacilityId",
	"destinationFacility.destinationFacilityData.destinationFacilityName",
	"destinationFacility.destinationFacilityData.destinationFacilityLicense",
	"destinationFacility.destinationFacilityData.destinationFacilityAddress.addressLine1",
	"destinationFacility.destinationFacilityData.destinationFacilityAddress.town",
}

// DocketFieldsForAdmin is matched by getAllDocketsForAdmin. It adds the fleet
// owner and drops time and free-text notes.
var DocketFieldsForAdmin = []string{
	"docketData.jobId",
	"docketData.individualDocketNumber",
	"docketData.date",
	"docketData.vehicleRegistration",
	"docketData.driverName",
	"docketData.collectionPointName",
	"docketData.collectionPointAddress.addressLine1",
	"docketData.collectionPointAddress.addressLine2",
	"docketData.collectionPointAddress.town",
	"docketData.collectionPointAddress.county",
	"docketData.collectionPointAddress.eircode",
	"docketData.collectionPointAddress.country",
	"docketData.wasteLines.description",
	"docketData.wasteLines.lowCode",
	"docketData.portOfExport",
	"docketData.countryOfDestination",
	"docketData.tfsReferenceNumber",
	"creatorEmail",
	"fleetOwnerEmail",
	"customerContact.customerName",
	"customerContact.customerEmail",
	"customerContact.customerPhone",
	"customerContact.customerAddress.addressLine1",
	"customerContact.customerAddress.town",
	"destinationFacility.destinationFacilityData.destinationFacilityId",
	"destinationFacility.destinationFacilityData.destinationFacilityName",
	"destinationFacility.destinationFacilityData.destinationFacilityLicense",
	"destinationFacility.destinationFacilityData.destinationFacilityAddress.addressLine1",
	"destinationFacility.destinationFacilityData.destinationFacilityAddress.town",
}

var CustomerFieldsForFleet = []string{
	"customerName",
	"customerEmail",
	"customerPhone",
	"customerAddress.addressLine1",
	"customerAddress.addressLine2",
	"customerAddress.town",
	"customerAddress.county",
	"customerAddress.eircode",
}

var FacilityFieldsForFleet = []string{
	"destinationFacilityData.destinationFacilityId",
	"destinationFacilityData.destinationFacilityName",
	"destinationFacilityData.destinationFacilityLicense",
	"destinationFacilityData.destinationFacilityEmail",
	"destinationFacilityData.destinationFacilityPhone",
	"destinationFacilityData.destinationFacilityAddress.addressLine1",
	"destinationFacilityData.destinationFacilityAddress.town",
	"destinationFacilityData.destinationFacilityAddress.county",
}

var UserFieldsForAdmin = []string{
	"personalDetails.name",
	"personalDetails.email",
	"personalDetails.phoneNumber",
	"accountType",
	"accountSubType",
}

var FleetFieldsForAdmin = []string{
	"name",
	"ownerEmail",
	"legalName",
	"permitNumber",
	"vatNumber",
	"companyEmail",
	"membersEmails",
}

// Sortable columns: wire name -> document path.

var DocketSortColumns = map[string]string{
	"date":                   "docketData.date",
	"jobId":                  "docketData.jobId",
	"individualDocketNumber": "docketData.individualDocketNumber",
	"customerName":           "customerContact.customerName",
	"destinationFacility":    "destinationFacility.destinationFacilityData.destinationFacilityName",
	"creatorEmail":           "creatorEmail",
	"createdAt":              "createdAt",
}

var CustomerSortColumns = map[string]string{
	"customerName":  "customerName",
	"customerEmail": "customerEmail",
	"createdAt":     "createdAt",
}

var UserSortColumns = map[string]string{
	"name":        "personalDetails.name",
	"email":       "personalDetails.email",
	"accountType": "accountType",
	"createdAt":   "createdAt",
}

var FleetSortColumns = map[string]string{
	"name":       "name",
	"ownerEmail": "ownerEmail",
	"createdAt":  "createdAt",
}
