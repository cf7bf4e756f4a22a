package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/evcraddock/homebid/internal/client"
	"github.com/evcraddock/homebid/internal/property"
)

func newPropertiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "properties",
		Aliases: []string{"property", "p"},
		Short:   "Browse and manage property listings",
	}

	cmd.AddCommand(
		newPropertiesListCmd(),
		newPropertiesShowCmd(),
		newPropertiesAddCmd(),
		newPropertiesUpdateCmd(),
		newPropertiesDeleteCmd(),
	)

	return cmd
}

func newPropertiesListCmd() *cobra.Command {
	var opts client.ListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List properties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			props, err := newAPIClient().ListProperties(opts)
			if err != nil {
				return fmt.Errorf("listing properties: %w", err)
			}
			out := cmd.OutOrStdout()
			return output(out, props, func(w io.Writer) error { return printPropertyTable(w, props) })
		},
	}

	cmd.Flags().StringVar(&opts.Owner, "owner", "", "filter by owner id")
	cmd.Flags().StringVar(&opts.City, "city", "", "filter by city")
	cmd.Flags().StringVar(&opts.State, "state", "", "filter by state")
	cmd.Flags().StringVar(&opts.Type, "type", "", "filter by listing type (e.g. sale, rent)")
	cmd.Flags().StringVar(&opts.Status, "status", "", "filter by status")

	return cmd
}

func newPropertiesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show property details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newAPIClient().GetProperty(args[0])
			if err != nil {
				return fmt.Errorf("getting property: %w", err)
			}
			return output(cmd.OutOrStdout(), p, func(w io.Writer) error {
				printPropertySummary(w, p)
				return nil
			})
		},
	}
}

// propertyFlags holds the flag values shared by add and update.
type propertyFlags struct {
	title, description, listingType, propertyType string
	street, city, state, zipCode, status          string
	price, bathrooms, area                        float64
	bedrooms                                      int64
	features, images                              []string
	clearFeatures, clearImages                    bool
	clear                                         []string
}

func (f *propertyFlags) register(fs *pflag.FlagSet, withStatus bool) {
	fs.StringVar(&f.title, "title", "", "listing title")
	fs.StringVar(&f.description, "description", "", "free-text description")
	fs.StringVar(&f.listingType, "type", "", "listing type (e.g. sale, rent)")
	fs.StringVar(&f.propertyType, "property-type", "", "property type (e.g. house, condo)")
	fs.Float64Var(&f.price, "price", 0, "asking price")
	fs.Int64Var(&f.bedrooms, "bedrooms", 0, "number of bedrooms")
	fs.Float64Var(&f.bathrooms, "bathrooms", 0, "number of bathrooms")
	fs.Float64Var(&f.area, "area", 0, "floor area")
	fs.StringVar(&f.street, "street", "", "street address")
	fs.StringVar(&f.city, "city", "", "city")
	fs.StringVar(&f.state, "state", "", "state")
	fs.StringVar(&f.zipCode, "zip", "", "zip code")
	fs.StringArrayVar(&f.features, "feature", nil, "feature (repeatable)")
	fs.StringArrayVar(&f.images, "image", nil, "image URL (repeatable)")
	if withStatus {
		fs.StringVar(&f.status, "status", "", "listing status")
		fs.BoolVar(&f.clearFeatures, "clear-features", false, "remove all features")
		fs.BoolVar(&f.clearImages, "clear-images", false, "remove all images")
		fs.StringSliceVar(&f.clear, "clear", nil, "optional fields to clear ("+strings.Join(clearable, ", ")+")")
	}
}

// clearable lists the names --clear accepts.
var clearable = []string{"description", "bedrooms", "bathrooms", "street", "zip"}

// flagValue returns a present field when the flag was set.
func flagValue[T any](fs *pflag.FlagSet, name string, v T) property.Optional[T] {
	if fs.Changed(name) {
		return property.Some(v)
	}
	return property.Optional[T]{}
}

// input builds a payload holding only the flags that were set.
func (f *propertyFlags) input(fs *pflag.FlagSet) (property.Input, error) {
	in := property.Input{
		Title:        flagValue(fs, "title", f.title),
		Description:  flagValue(fs, "description", f.description),
		ListingType:  flagValue(fs, "type", f.listingType),
		PropertyType: flagValue(fs, "property-type", f.propertyType),
		Price:        flagValue(fs, "price", f.price),
		Bedrooms:     flagValue(fs, "bedrooms", f.bedrooms),
		Bathrooms:    flagValue(fs, "bathrooms", f.bathrooms),
		Area:         flagValue(fs, "area", f.area),
		Street:       flagValue(fs, "street", f.street),
		City:         flagValue(fs, "city", f.city),
		State:        flagValue(fs, "state", f.state),
		ZipCode:      flagValue(fs, "zip", f.zipCode),
		Features:     flagValue(fs, "feature", f.features),
		Images:       flagValue(fs, "image", f.images),
		Status:       flagValue(fs, "status", f.status),
	}
	if f.clearFeatures {
		in.Features = property.Some([]string{})
	}
	if f.clearImages {
		in.Images = property.Some([]string{})
	}

	for _, name := range f.clear {
		if fs.Changed(name) {
			return property.Input{}, fmt.Errorf("--%s and --clear %s conflict", name, name)
		}
		switch name {
		case "description":
			in.Description = property.Null[string]()
		case "bedrooms":
			in.Bedrooms = property.Null[int64]()
		case "bathrooms":
			in.Bathrooms = property.Null[float64]()
		case "street":
			in.Street = property.Null[string]()
		case "zip":
			in.ZipCode = property.Null[string]()
		default:
			return property.Input{}, fmt.Errorf("cannot clear %q (clearable: %s)", name, strings.Join(clearable, ", "))
		}
	}
	return in, nil
}

func newPropertiesAddCmd() *cobra.Command {
	var f propertyFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "List a new property",
		Long:  "List a new property. Requires --title, --type, --property-type, --price, --area, --city and --state.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := f.input(cmd.Flags())
			if err != nil {
				return err
			}
			id, err := newAPIClient().CreateProperty(in)
			if err != nil {
				return fmt.Errorf("adding property: %w", err)
			}
			return output(cmd.OutOrStdout(), map[string]string{"property_id": id}, func(w io.Writer) error {
				fmt.Fprintf(w, "✓ Property %s listed.\n", id)
				return nil
			})
		},
	}

	f.register(cmd.Flags(), false)
	return cmd
}

func newPropertiesUpdateCmd() *cobra.Command {
	var f propertyFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a property you own",
		Long:  "Update a property. Only the flags you pass are changed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().NFlag() == 0 {
				return fmt.Errorf("nothing to update: pass at least one field flag")
			}
			in, err := f.input(cmd.Flags())
			if err != nil {
				return err
			}
			if err := newAPIClient().UpdateProperty(args[0], in); err != nil {
				return fmt.Errorf("updating property: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Property %s updated.\n", args[0])
			return nil
		},
	}

	f.register(cmd.Flags(), true)
	return cmd
}

func newPropertiesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a property you own",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newAPIClient().DeleteProperty(args[0]); err != nil {
				return fmt.Errorf("deleting property: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Property %s deleted.\n", args[0])
			return nil
		},
	}
}
