package checkout

import "github.com/stripe/stripe-go/v84"

// StripeParams renders the config as Stripe checkout session parameters.
func (c *SessionConfig) StripeParams() *stripe.CheckoutSessionParams {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(c.Mode),
		PaymentMethodTypes: stripe.StringSlice(c.PaymentMethodTypes),
		SuccessURL:         stripe.String(c.SuccessURL),
		CancelURL:          stripe.String(c.CancelURL),
	}
	for k, v := range c.Metadata {
		params.AddMetadata(k, v)
	}

	for _, li := range c.LineItems {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(li.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(li.Name),
					Description: stripe.String(li.Description),
					Images:      stripe.StringSlice(li.Images),
				},
				UnitAmount: stripe.Int64(li.UnitAmount),
			},
			Quantity: stripe.Int64(li.Quantity),
		})
	}

	if c.PhoneNumberCollection {
		params.PhoneNumberCollection = &stripe.CheckoutSessionPhoneNumberCollectionParams{
			Enabled: stripe.Bool(true),
		}
	}
	if c.SubmitMessage != "" {
		params.CustomText = &stripe.CheckoutSessionCustomTextParams{
			Submit: &stripe.CheckoutSessionCustomTextSubmitParams{
				Message: stripe.String(c.SubmitMessage),
			},
		}
	}

	if len(c.ShippingAllowedCountries) > 0 {
		params.ShippingAddressCollection = &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(c.ShippingAllowedCountries),
		}
	}
	for _, opt := range c.ShippingOptions {
		params.ShippingOptions = append(params.ShippingOptions, &stripe.CheckoutSessionShippingOptionParams{
			ShippingRateData: &stripe.CheckoutSessionShippingOptionShippingRateDataParams{
				Type:        stripe.String(shippingRateFixedAmount),
				DisplayName: stripe.String(opt.DisplayName),
				FixedAmount: &stripe.CheckoutSessionShippingOptionShippingRateDataFixedAmountParams{
					Amount:   stripe.Int64(opt.Amount),
					Currency: stripe.String(opt.Currency),
				},
				DeliveryEstimate: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateParams{
					Minimum: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMinimumParams{
						Unit:  stripe.String(estimateUnitBusinessDay),
						Value: stripe.Int64(opt.MinBusinessDays),
					},
					Maximum: &stripe.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMaximumParams{
						Unit:  stripe.String(estimateUnitBusinessDay),
						Value: stripe.Int64(opt.MaxBusinessDays),
					},
				},
			},
		})
	}

	return params
}
