package checkout

import "github.com/eyira/storefront/pkg/enums"

// Metadata keys carrying the buyer's delivery method on the provider session.
// Both are written on every session; readers try them in DeliveryMethodKeys order.
const (
	MetadataKeyDeliveryType   = "delivery_type"
	MetadataKeyDeliveryMethod = "delivery_method"
)

// DeliveryMethodKeys is the lookup order used when reading a delivery method
// back out of session metadata.
var DeliveryMethodKeys = []string{MetadataKeyDeliveryType, MetadataKeyDeliveryMethod}

// DefaultDeliveryMethod applies when no metadata key holds a recognised value.
const DefaultDeliveryMethod = enums.DeliveryMethodShip

// DeliveryMetadata returns the metadata entries recording method.
func DeliveryMetadata(method enums.DeliveryMethod) map[string]string {
	md := make(map[string]string, len(DeliveryMethodKeys))
	for _, key := range DeliveryMethodKeys {
		md[key] = method.String()
	}
	return md
}

// ResolveDeliveryMethod reads the delivery method from metadata, trying each of
// DeliveryMethodKeys in turn and falling back to DefaultDeliveryMethod.
func ResolveDeliveryMethod(metadata map[string]string) enums.DeliveryMethod {
	for _, key := range DeliveryMethodKeys {
		raw, ok := metadata[key]
		if !ok {
			continue
		}
		if method, err := enums.ParseDeliveryMethod(raw); err == nil {
			return method
		}
	}
	return DefaultDeliveryMethod
}
