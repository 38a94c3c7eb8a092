package config

import (
	"errors"
	"fmt"
	"net"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"grimm.is/floe/internal/validation"
)

// ValidationError represents a single validation error with context.
type ValidationError struct {
	ItemName  string // For interfaces: the declared name (e.g. "eth0")
	FieldPath string // Dot-notation field path (e.g. "interface.0.gateway")
	Message   string // Human-readable error message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("validation failed with %d error(s):\n", len(ve)))
	for i, err := range ve {
		if err.ItemName != "" {
			sb.WriteString(fmt.Sprintf("  %d. [%s] %s: %s\n", i+1, err.ItemName, err.FieldPath, err.Message))
		} else {
			sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.FieldPath, err.Message))
		}
	}
	return sb.String()
}

var validate *validator.Validate

func init() {
	validate = validator.New()

	if err := validate.RegisterValidation("iface_name", validateInterfaceNameTag); err != nil {
		panic(err)
	}

	// Report field names by their "hcl" tag so errors match the file
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("hcl"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateInterfaceNameTag(fl validator.FieldLevel) bool {
	return validation.ValidateInterfaceName(fl.Field().String()) == nil
}

// getValidationMessage returns a human-readable message for a validation error.
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "min":
		return fmt.Sprintf("must be >= %s", e.Param())
	case "max":
		return fmt.Sprintf("must be <= %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "ip4_addr":
		return "must be a valid IPv4 address"
	case "cidrv4":
		return "must be a valid IPv4 CIDR (e.g. 192.168.1.10/24)"
	case "hostname_rfc1123":
		return "must be a valid domain name"
	case "iface_name":
		return "must be a valid interface name (alphanumeric with -_., max 15 characters)"
	default:
		return fmt.Sprintf("validation failed: %s", e.Tag())
	}
}

// Validate checks the whole configuration and returns all validation
// errors at once.
func (c *Config) Validate() error {
	var validationErrors ValidationErrors

	if c.SchemaVersion != "" && c.SchemaVersion != CurrentSchemaVersion {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "schema_version",
			Message:   fmt.Sprintf("unsupported schema version %q (this build reads %q)", c.SchemaVersion, CurrentSchemaVersion),
		})
	}

	if c.Defaults != nil {
		if err := validate.Struct(c.Defaults); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, "defaults", "")...)
		}
	}

	seenNames := make(map[string]bool)
	for i := range c.Interfaces {
		iface := &c.Interfaces[i]
		itemName := iface.Name
		if itemName == "" {
			itemName = fmt.Sprintf("interface[%d]", i)
		}

		if err := validate.Struct(iface); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, fmt.Sprintf("interface.%d", i), itemName)...)
		}

		if seenNames[iface.Name] {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: "name",
				Message:   fmt.Sprintf("duplicate interface: %s", iface.Name),
			})
		}
		seenNames[iface.Name] = true

		validationErrors = append(validationErrors, iface.validateBlocks(i)...)
	}

	if len(validationErrors) > 0 {
		return validationErrors
	}
	return nil
}

func (ic *InterfaceConfig) validateBlocks(index int) ValidationErrors {
	var validationErrors ValidationErrors

	itemName := ic.Name
	if itemName == "" {
		itemName = fmt.Sprintf("interface[%d]", index)
	}

	if ic.Method == "manual" && len(ic.Addresses) == 0 {
		validationErrors = append(validationErrors, ValidationError{
			ItemName:  itemName,
			FieldPath: "method",
			Message:   "manual addressing requires at least one address block",
		})
	}
	if ic.Method == "disabled" && (len(ic.Addresses) > 0 || len(ic.Routes) > 0 || ic.Gateway != "") {
		validationErrors = append(validationErrors, ValidationError{
			ItemName:  itemName,
			FieldPath: "method",
			Message:   "disabled interfaces cannot declare addresses, routes or a gateway",
		})
	}

	seenCIDRs := make(map[string]bool)
	for j, ab := range ic.Addresses {
		fieldPrefix := fmt.Sprintf("interface.%d.address.%d", index, j)

		if err := validate.Struct(ab); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, fieldPrefix, itemName)...)
			continue
		}

		if seenCIDRs[ab.CIDR] {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: fieldPrefix + ".cidr",
				Message:   fmt.Sprintf("duplicate address: %s", ab.CIDR),
			})
		}
		seenCIDRs[ab.CIDR] = true

		if err := validation.ValidateAddressLabel(ab.Label, ic.Name); err != nil {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: fieldPrefix + ".label",
				Message:   err.Error(),
			})
		}
	}

	seenDests := make(map[string]bool)
	for j, rb := range ic.Routes {
		fieldPrefix := fmt.Sprintf("interface.%d.route.%d", index, j)

		if err := validate.Struct(rb); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, fieldPrefix, itemName)...)
			continue
		}

		// The default route is expressed through gateway/never_default,
		// never as an explicit 0.0.0.0/0 declaration.
		if _, ipnet, err := net.ParseCIDR(rb.Destination); err == nil {
			if ones, _ := ipnet.Mask.Size(); ones == 0 {
				validationErrors = append(validationErrors, ValidationError{
					ItemName:  itemName,
					FieldPath: fieldPrefix + ".destination",
					Message:   "default route cannot be declared as a route block; set gateway instead",
				})
			}
		}

		if seenDests[rb.Destination] {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: fieldPrefix + ".destination",
				Message:   fmt.Sprintf("duplicate route destination: %s", rb.Destination),
			})
		}
		seenDests[rb.Destination] = true

		if rb.Metric != nil && *rb.Metric < 0 {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: fieldPrefix + ".metric",
				Message:   "metric cannot be negative",
			})
		}
	}

	if ic.DNS != nil {
		if err := validate.Struct(ic.DNS); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, fmt.Sprintf("interface.%d.dns", index), itemName)...)
		}
	}

	return validationErrors
}

// convertValidatorErrors converts go-playground/validator errors to our ValidationError format.
func convertValidatorErrors(err error, fieldPrefix string, itemName string) ValidationErrors {
	var validationErrors ValidationErrors

	var validatorErrs validator.ValidationErrors
	if errors.As(err, &validatorErrs) {
		for _, e := range validatorErrs {
			fieldPath := fieldPrefix
			if e.Field() != "" {
				// e.Field() returns the hcl tag name because of the TagNameFunc
				fieldName := e.Field()

				if fieldPrefix != "" {
					fieldPath = fieldPrefix + "." + fieldName
				} else {
					fieldPath = fieldName
				}
			}

			message := getValidationMessage(e)

			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: fieldPath,
				Message:   message,
			})
		}
	}

	return validationErrors
}
