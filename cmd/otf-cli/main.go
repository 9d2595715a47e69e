package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/ammiranda/otfgo/otf_api"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/ipinfo/go/v2/ipinfo"
	"github.com/joho/godotenv"
	"github.com/mgutz/ansi"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	configFileName = "config.json"
	cliDirName     = "otf-cli"
)

// CLIConfig holds the CLI configuration
type CLIConfig struct {
	PreferredStudioIDs []string `json:"preferred_studio_ids,omitempty"`
	Timezone           string   `json:"timezone,omitempty"`
}

var rootCmd = &cobra.Command{
	Use:   "otf-cli",
	Short: "A CLI client for the OrangeTheory Fitness API",
	Long:  `otf-cli is a command-line interface to interact with the OrangeTheory Fitness API, allowing users to fetch schedules, manage bookings and review workouts.`,
}

var studioIDs string

// newAPIClient logs in and builds a client. Credentials come from OTF_EMAIL
// and OTF_PASSWORD; missing ones are prompted for.
func newAPIClient(ctx context.Context) (*otf_api.Client, error) {
	email := os.Getenv("OTF_EMAIL")
	password := os.Getenv("OTF_PASSWORD")

	if email == "" {
		prompt := &survey.Input{Message: "OTF account email:"}
		if err := survey.AskOne(prompt, &email, survey.WithValidator(survey.Required)); err != nil {
			return nil, err
		}
	}
	if password == "" {
		fmt.Print("OTF account password: ")
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return nil, fmt.Errorf("error reading password: %w", err)
		}
		password = string(raw)
	}

	session, err := otf_api.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("error authenticating: %w", err)
	}

	return otf_api.NewClient(session)
}

// detectLocation looks up approximate coordinates from the caller's IP. An
// IPINFO_TOKEN environment variable raises the lookup quota but is not
// required for occasional use.
func detectLocation() (lat, long float64, source string, err error) {
	client := ipinfo.NewClient(nil, nil, os.Getenv("IPINFO_TOKEN"))
	info, err := client.GetIPInfo(nil)
	if err != nil {
		return 0, 0, "", err
	}

	parts := strings.Split(info.Location, ",")
	if len(parts) != 2 {
		return 0, 0, "", fmt.Errorf("unexpected location format %q", info.Location)
	}
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	long, errLong := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errLat != nil || errLong != nil {
		return 0, 0, "", fmt.Errorf("unparsable coordinates %q", info.Location)
	}

	source = fmt.Sprintf("detected from your IP near %s, %s", info.City, info.Region)
	return lat, long, source, nil
}

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Configure otf-cli settings",
	Long:  `Provides commands to configure various settings for the otf-cli, such as preferred studios.`,
}

var configureStudiosCmd = &cobra.Command{
	Use:   "studios",
	Short: "Configure preferred OTF studios",
	Long: `Allows you to search for OTF studios by location and save your preferred ones.
These saved studios will be used by the 'schedules' command if no --studio-ids are specified.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		apiClient, err := newAPIClient(ctx)
		if err != nil {
			log.Fatalf("Error creating API client: %v", err)
		}

		lat, long, locationSource, err := detectLocation()
		if err != nil {
			log.Printf("Warning: Could not detect location from IP: %v", err)
		}

		// If location detection failed, prompt for manual input
		if lat == 0 && long == 0 {
			locationQs := []*survey.Question{
				{
					Name:     "latitude",
					Prompt:   &survey.Input{Message: "Enter your latitude (e.g., 40.7128):"},
					Validate: survey.Required,
				},
				{
					Name:     "longitude",
					Prompt:   &survey.Input{Message: "Enter your longitude (e.g., -74.0060):"},
					Validate: survey.Required,
				},
			}
			locationAnswers := struct {
				Latitude  string `survey:"latitude"`
				Longitude string `survey:"longitude"`
			}{}

			if err := survey.Ask(locationQs, &locationAnswers); err != nil {
				log.Fatalf("Error getting location input: %v", err)
			}

			var errLat, errLong error
			lat, errLat = strconv.ParseFloat(locationAnswers.Latitude, 64)
			long, errLong = strconv.ParseFloat(locationAnswers.Longitude, 64)

			if errLat != nil || errLong != nil {
				log.Fatalf("Invalid numeric input for latitude or longitude. Please ensure they are valid numbers.")
			}
			locationSource = "manually entered"
		}

		// Prompt for distance
		var distanceStr string
		distancePrompt := &survey.Input{Message: "Enter search distance in miles (e.g., 10):"}
		if err := survey.AskOne(distancePrompt, &distanceStr, survey.WithValidator(survey.Required)); err != nil {
			log.Fatalf("Error getting distance input: %v", err)
		}

		dist, errDist := strconv.Atoi(strings.TrimSpace(distanceStr))
		if errDist != nil {
			log.Fatalf("Invalid numeric input for distance. Please ensure it is a valid number.")
		}

		log.Printf("Using location %s: %.6f, %.6f", locationSource, lat, long)
		log.Println("Fetching studios near you...")
		studios, err := apiClient.Studios.SearchByGeo(ctx, &lat, &long, dist)
		if err != nil {
			log.Fatalf("Error fetching studios: %v", err)
		}

		if len(studios) == 0 {
			log.Println("No studios found for the given location and distance. Try increasing the distance or checking your coordinates.")
			return
		}

		// Prepare for multi-select
		studioOptions := []string{}
		studioMap := make(map[string]string) // Maps display name to StudioUUID
		for _, studio := range studios {
			displayName := fmt.Sprintf("%s (%s away)", studio.Name,
				strings.TrimSuffix(strconv.FormatFloat(studio.Distance, 'f', 1, 64), ".0")+" miles")
			studioOptions = append(studioOptions, displayName)
			studioMap[displayName] = studio.StudioUUID
		}

		selectedDisplayNames := []string{}
		prompt := &survey.MultiSelect{
			Message:  "Select your preferred studios (use space to select, enter to confirm):",
			Options:  studioOptions,
			PageSize: 15,
		}
		if err := survey.AskOne(prompt, &selectedDisplayNames); err != nil {
			log.Fatalf("Error during studio selection: %v", err)
		}

		selectedStudioIDs := []string{}
		for _, displayName := range selectedDisplayNames {
			if id, ok := studioMap[displayName]; ok {
				selectedStudioIDs = append(selectedStudioIDs, id)
			}
		}

		config, err := loadConfig()
		if err != nil {
			log.Printf("Warning: Could not load existing config, will create a new one: %v", err)
			config = CLIConfig{}
		}

		config.PreferredStudioIDs = selectedStudioIDs
		if err := saveConfig(config); err != nil {
			log.Fatalf("Error saving configuration: %v", err)
		}

		if len(selectedStudioIDs) > 0 {
			log.Printf("Preferred studios saved: %s", strings.Join(selectedStudioIDs, ", "))
		} else {
			log.Println("No studios selected. Preferred studios configuration remains unchanged or empty.")
		}
	},
}

var configureTimezoneCmd = &cobra.Command{
	Use:   "timezone",
	Short: "Configure your preferred timezone",
	Long:  `Set your preferred timezone for displaying class times. If not set, the system's local timezone will be used.`,
	Run: func(cmd *cobra.Command, args []string) {
		timezones := []string{
			"America/New_York",
			"America/Chicago",
			"America/Denver",
			"America/Los_Angeles",
			"America/Anchorage",
			"Pacific/Honolulu",
			"America/Phoenix",
			"America/Detroit",
			"America/Indiana/Indianapolis",
			"America/Kentucky/Louisville",
			"America/Boise",
		}

		config, err := loadConfig()
		if err != nil {
			log.Printf("Warning: Could not load existing config, will create a new one: %v", err)
			config = CLIConfig{}
		}

		// If timezone is already set, add it to the list if it's not there
		if config.Timezone != "" {
			found := false
			for _, tz := range timezones {
				if tz == config.Timezone {
					found = true
					break
				}
			}
			if !found {
				timezones = append(timezones, config.Timezone)
			}
		}

		timezones = append(timezones, "System Local Timezone")

		var selectedTimezone string
		prompt := &survey.Select{
			Message: "Select your preferred timezone:",
			Options: timezones,
			Default: func() string {
				for _, tz := range timezones {
					if tz == config.Timezone {
						return tz
					}
				}
				return "System Local Timezone"
			}(),
		}
		if err := survey.AskOne(prompt, &selectedTimezone); err != nil {
			log.Fatalf("Error during timezone selection: %v", err)
		}

		if selectedTimezone == "System Local Timezone" {
			config.Timezone = ""
		} else {
			config.Timezone = selectedTimezone
		}

		if err := saveConfig(config); err != nil {
			log.Fatalf("Error saving configuration: %v", err)
		}

		if config.Timezone == "" {
			fmt.Println("Timezone set to use system local timezone.")
		} else {
			fmt.Printf("Timezone set to: %s\n", config.Timezone)
		}
	},
}

var bookingsCmd = &cobra.Command{
	Use:   "bookings",
	Short: "Manage your OTF bookings",
	Long:  `Commands to list and cancel your OrangeTheory Fitness bookings.`,
}

var listBookingsCmd = &cobra.Command{
	Use:   "list",
	Short: "List your current bookings",
	Long:  `Lists all your current and upcoming OrangeTheory Fitness bookings.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		apiClient, err := newAPIClient(ctx)
		if err != nil {
			log.Fatalf("Error creating API client: %v", err)
		}

		// Bookings from today through 60 days out, cancelled ones included so
		// the full picture is visible in view mode.
		bookings, err := apiClient.Bookings.ListBookingsV2(ctx, otf_api.ListBookingsV2Options{
			StartsAfter:      time.Now(),
			EndsBefore:       time.Now().AddDate(0, 0, 60),
			IncludeCancelled: true,
		})
		if err != nil {
			log.Fatalf("Error fetching bookings: %v", err)
		}

		if len(bookings) == 0 {
			fmt.Println("No bookings found.")
			return
		}

		config, err := loadConfig()
		if err != nil {
			log.Printf("Warning: Could not load configuration: %v", err)
			config = CLIConfig{}
		}

		// Only live bookings are cancellable
		activeBookings := []*otf_api.BookingV2{}
		for _, booking := range bookings {
			if !booking.Canceled {
				activeBookings = append(activeBookings, booking)
			}
		}

		bookingOptions := []string{}
		bookingMap := make(map[string]*otf_api.BookingV2)

		for _, booking := range activeBookings {
			classTime := booking.Class.Starts.Time

			displayTime := classTime
			if config.Timezone != "" {
				if loc, err := time.LoadLocation(config.Timezone); err == nil {
					displayTime = classTime.In(loc)
				}
			}
			dayStr := displayTime.Format("Mon Jan 2")

			studioName := ""
			if booking.Class.Studio != nil {
				studioName = booking.Class.Studio.Name
			}

			displayStr := fmt.Sprintf("%s - %s at %s - %s",
				dayStr,
				booking.Class.Name,
				studioName,
				formatTime(classTime, config))

			bookingOptions = append(bookingOptions, displayStr)
			bookingMap[displayStr] = booking
		}

		bookingOptions = append(bookingOptions, "Just view bookings (no action)")

		var selectedBookingDisplay string
		prompt := &survey.Select{
			Message:  "Select a booking to cancel (or just view):",
			Options:  bookingOptions,
			PageSize: 15,
		}
		if err := survey.AskOne(prompt, &selectedBookingDisplay); err != nil {
			log.Fatalf("Error during booking selection: %v", err)
		}

		if selectedBookingDisplay == "Just view bookings (no action)" {
			fmt.Printf("\nYour Bookings (%d total):\n\n", len(bookings))

			lastDay := ""
			for i, booking := range bookings {
				var status string
				switch booking.BookingStatus() {
				case otf_api.BookingStatusLateCancelled:
					status = ansi.Color("Late Canceled", "yellow")
				case otf_api.BookingStatusCancelled:
					status = ansi.Color("Canceled", "red")
				case otf_api.BookingStatusCheckedIn:
					status = ansi.Color("Checked In", "cyan")
				default:
					status = ansi.Color("Booked", "green")
				}

				classTime := booking.Class.Starts.Time

				bookingDay := classTime.Format("Mon Jan 2")
				if config.Timezone != "" {
					if loc, err := time.LoadLocation(config.Timezone); err == nil {
						bookingDay = classTime.In(loc).Format("Mon Jan 2")
					}
				}

				if bookingDay != lastDay {
					if i > 0 {
						fmt.Println()
					}
					fmt.Printf("=== %s ===\n", bookingDay)
					lastDay = bookingDay
				}

				studioName := ""
				if booking.Class.Studio != nil {
					studioName = booking.Class.Studio.Name
				}

				fmt.Printf("%s\n", ansi.Color(booking.Class.Name, "cyan"))
				fmt.Printf("   Studio: %s\n", studioName)
				fmt.Printf("   Time: %s (%s)\n", formatTime(classTime, config), humanize.Time(classTime))
				fmt.Printf("   Status: %s\n", status)
				fmt.Printf("   Booking ID: %s\n", booking.ID)
				fmt.Println()
			}
			return
		}

		selectedBooking, ok := bookingMap[selectedBookingDisplay]
		if !ok {
			log.Fatal("Error: Selected booking not found")
		}

		classTime := selectedBooking.Class.Starts.Time
		fmt.Printf("\nSelected Booking:\n")
		fmt.Printf("Class: %s\n", selectedBooking.Class.Name)
		if selectedBooking.Class.Studio != nil {
			fmt.Printf("Studio: %s\n", selectedBooking.Class.Studio.Name)
		}
		fmt.Printf("Time: %s\n", formatTime(classTime, config))
		fmt.Printf("Booking ID: %s\n", selectedBooking.ID)

		var shouldCancel bool
		cancelPrompt := &survey.Confirm{
			Message: "Are you sure you want to cancel this booking?",
		}
		if err := survey.AskOne(cancelPrompt, &shouldCancel); err != nil {
			log.Fatalf("Error during cancellation confirmation: %v", err)
		}

		if !shouldCancel {
			fmt.Println("Cancellation aborted.")
			return
		}

		if err := selectedBooking.Cancel(ctx); err != nil {
			log.Fatalf("Error canceling booking: %v", err)
		}

		fmt.Printf("Successfully canceled booking for %s\n", selectedBooking.Class.Name)
	},
}

var cancelBookingCmd = &cobra.Command{
	Use:   "cancel [booking-id]",
	Short: "Cancel a booking",
	Long:  `Cancel a booking by providing the booking ID. Use 'otf-cli bookings list' to see your booking IDs.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		bookingID := args[0]

		ctx := context.Background()
		apiClient, err := newAPIClient(ctx)
		if err != nil {
			log.Fatalf("Error creating API client: %v", err)
		}

		var shouldCancel bool
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("Are you sure you want to cancel booking %s?", bookingID),
		}
		if err := survey.AskOne(prompt, &shouldCancel); err != nil {
			log.Fatalf("Error during cancellation confirmation: %v", err)
		}

		if !shouldCancel {
			fmt.Println("Cancellation aborted.")
			return
		}

		if err := apiClient.Bookings.CancelV2ByID(ctx, bookingID); err != nil {
			log.Fatalf("Error canceling booking: %v", err)
		}

		fmt.Printf("Successfully canceled booking %s\n", bookingID)
	},
}

var schedulesCmd = &cobra.Command{
	Use:   "schedules",
	Short: "Fetch studio schedules",
	Long:  `Fetches schedules for the specified studio IDs. Requires OTF_EMAIL and OTF_PASSWORD environment variables. If --studio-ids is not provided, it will try to use saved preferred studios.`,
	Run: func(cmd *cobra.Command, args []string) {
		var idsToFetch []string

		if studioIDs != "" {
			idsToFetch = strings.Split(studioIDs, ",")
		} else {
			config, err := loadConfig()
			if err != nil {
				log.Fatalf("Error loading configuration to get preferred studios: %v. Please run 'otf-cli configure studios' or provide --studio-ids.", err)
			}
			if len(config.PreferredStudioIDs) > 0 {
				idsToFetch = config.PreferredStudioIDs
				log.Printf("Using preferred studio IDs from configuration: %s", strings.Join(idsToFetch, ", "))
			} else {
				log.Fatal("Error: No studio IDs provided via --studio-ids flag and no preferred studios found in configuration. Please run 'otf-cli configure studios' or provide the --studio-ids flag.")
			}
		}

		for i, id := range idsToFetch {
			idsToFetch[i] = strings.TrimSpace(id)
			if _, err := uuid.Parse(idsToFetch[i]); err != nil {
				log.Fatalf("Error: %q is not a valid studio UUID", id)
			}
		}

		ctx := context.Background()
		apiClient, err := newAPIClient(ctx)
		if err != nil {
			log.Fatalf("Error creating API client: %v", err)
		}

		classes, err := apiClient.Bookings.ListClasses(ctx, otf_api.ListClassesOptions{
			StudioUUIDs: idsToFetch,
		})
		if err != nil {
			log.Fatalf("Error fetching schedules: %v", err)
		}

		if len(classes) == 0 {
			log.Println("No classes found for the selected studios.")
			return
		}

		config, err := loadConfig()
		if err != nil {
			log.Printf("Warning: Could not load configuration: %v", err)
			config = CLIConfig{}
		}

		classOptions := []string{}
		classMap := make(map[string]*otf_api.Class)

		studioColors := []string{"red", "green", "yellow", "blue", "magenta", "cyan", "white"}
		studioColorMap := make(map[string]string) // studio UUID -> color name
		colorIdx := 0

		// Detect terminal width and set breakpoints
		termWidth := 80
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			termWidth = w
		}
		var entryWidth int
		if termWidth >= 120 {
			entryWidth = 110
		} else if termWidth >= 100 {
			entryWidth = 90
		} else {
			entryWidth = 70
		}

		// Collect max widths for each column first
		maxClassName := 0
		maxStartTime := 0
		maxEndTime := 0
		for _, class := range classes {
			if l := len([]rune(class.Name)); l > maxClassName {
				maxClassName = l
			}
			startTime := formatTime(class.Starts.Time, config)
			endTime := formatTime(class.EndsAt(), config)
			if l := len([]rune(startTime)); l > maxStartTime {
				maxStartTime = l
			}
			if l := len([]rune(endTime)); l > maxEndTime {
				maxEndTime = l
			}
		}

		minSpace := 2
		studioColStart := maxClassName + minSpace + maxStartTime + minSpace + maxEndTime + minSpace
		studioColWidth := entryWidth - studioColStart
		if studioColWidth < 10 {
			studioColWidth = 10
		}

		// Group classes by day
		lastDay := ""
		for _, class := range classes {
			studioName := ""
			studioUUID := ""
			if class.Studio != nil {
				studioName = class.Studio.Name
				studioUUID = class.Studio.StudioUUID
			}

			colorName, ok := studioColorMap[studioUUID]
			if !ok {
				colorName = studioColors[colorIdx%len(studioColors)]
				studioColorMap[studioUUID] = colorName
				colorIdx++
			}

			startTime := formatTime(class.Starts.Time, config)
			endTime := formatTime(class.EndsAt(), config)

			classDay := class.Starts.Format("Mon Jan 2")
			if config.Timezone != "" {
				if loc, err := time.LoadLocation(config.Timezone); err == nil {
					classDay = class.Starts.In(loc).Format("Mon Jan 2")
				}
			}

			if classDay != lastDay {
				header := fmt.Sprintf("=== %s ===", classDay)
				classOptions = append(classOptions, header)
				lastDay = classDay
			}

			// Pad before colorizing so the escape codes don't skew alignment
			coloredStudio := ansi.Color(padOrTruncate(studioName, studioColWidth), colorName)

			classNameCol := padOrTruncate(class.Name, maxClassName)
			startTimeCol := padOrTruncate(startTime, maxStartTime)
			endTimeCol := padOrTruncate(endTime, maxEndTime)

			displayStr := fmt.Sprintf("%s%s%s%s%s%s%s",
				classNameCol, strings.Repeat(" ", minSpace),
				startTimeCol, strings.Repeat(" ", minSpace),
				endTimeCol, strings.Repeat(" ", minSpace),
				coloredStudio,
			)

			if class.IsBooked {
				displayStr += ansi.Color("  (booked)", "green")
			} else if !class.HasAvailability() {
				displayStr += ansi.Color("  (full)", "red")
			}

			classOptions = append(classOptions, displayStr)
			classMap[displayStr] = class
		}

		var selectedClassDisplay string
		prompt := &survey.Select{
			Message:  "Select a class to book:",
			Options:  classOptions,
			PageSize: 15,
		}
		if err := survey.AskOne(prompt, &selectedClassDisplay); err != nil {
			log.Fatalf("Error during class selection: %v", err)
		}

		// Day headers are selectable too; treat them as a no-op
		selectedClass, ok := classMap[selectedClassDisplay]
		if !ok {
			fmt.Println("That was a day header, not a class. Run the command again to pick a class.")
			return
		}

		fmt.Printf("\nSelected Class Details:\n")
		fmt.Printf("Class: %s\n", selectedClass.Name)
		if selectedClass.Studio != nil {
			fmt.Printf("Studio: %s\n", selectedClass.Studio.Name)
		}
		fmt.Printf("Time: %s to %s\n",
			formatTime(selectedClass.Starts.Time, config),
			formatTime(selectedClass.EndsAt(), config))
		fmt.Printf("Booked: %d of %d spots\n",
			selectedClass.BookingCapacity,
			selectedClass.MaxCapacity)

		if selectedClass.IsBooked {
			fmt.Println("You already have a booking for this class.")
			return
		}

		if !selectedClass.HasAvailability() {
			var useWaitlist bool
			waitlistPrompt := &survey.Confirm{
				Message: fmt.Sprintf("This class is full (waitlist size %d). Join the waitlist?", selectedClass.WaitlistSize),
			}
			if err := survey.AskOne(waitlistPrompt, &useWaitlist); err != nil {
				log.Fatalf("Error during waitlist confirmation: %v", err)
			}
			if !useWaitlist {
				fmt.Println("Booking cancelled.")
				return
			}

			// The newer bookings endpoint handles waitlisting server-side
			if _, err := apiClient.Bookings.BookV2(ctx, selectedClass.ClassID); err != nil {
				log.Fatalf("Error joining waitlist: %v", err)
			}
			fmt.Println("Successfully added to waitlist!")
			return
		}

		var shouldBook bool
		bookPrompt := &survey.Confirm{
			Message: "Would you like to book this class?",
		}
		if err := survey.AskOne(bookPrompt, &shouldBook); err != nil {
			log.Fatalf("Error during booking confirmation: %v", err)
		}

		if !shouldBook {
			fmt.Println("Booking cancelled.")
			return
		}

		if _, err := selectedClass.Book(ctx); err != nil {
			log.Fatalf("Error booking class: %v", err)
		}
		fmt.Println("Successfully booked the class!")
	},
}

var workoutDays int

var workoutsCmd = &cobra.Command{
	Use:   "workouts",
	Short: "Review your recent workouts",
	Long:  `Lists your recent workouts with heart rate, splat points, calories and equipment stats.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		apiClient, err := newAPIClient(ctx)
		if err != nil {
			log.Fatalf("Error creating API client: %v", err)
		}

		config, err := loadConfig()
		if err != nil {
			config = CLIConfig{}
		}

		startDate := time.Now().AddDate(0, 0, -workoutDays)
		workouts, err := apiClient.Workouts.ListWorkouts(ctx, startDate, time.Now())
		if err != nil {
			log.Fatalf("Error fetching workouts: %v", err)
		}

		if len(workouts) == 0 {
			fmt.Printf("No workouts found in the last %d days.\n", workoutDays)
			return
		}

		fmt.Printf("\nYour Workouts (%d in the last %d days):\n\n", len(workouts), workoutDays)
		for _, w := range workouts {
			classTime := w.Class.Starts.Time
			fmt.Printf("%s  %s (%s)\n",
				ansi.Color(classTime.Format("Mon Jan 2"), "cyan"),
				w.Class.Name,
				humanize.Time(classTime))
			if w.Coach != "" {
				fmt.Printf("   Coach: %s\n", w.Coach)
			}
			fmt.Printf("   Splats: %s   Calories: %s   Steps: %s\n",
				ansi.Color(strconv.Itoa(w.SplatPoints), "yellow"),
				humanize.Comma(int64(w.CaloriesBurned)),
				humanize.Comma(int64(w.StepCount)))
			if w.HeartRate != nil {
				fmt.Printf("   Avg HR: %d (%d%%)   Peak HR: %d (%d%%)\n",
					w.HeartRate.AvgHR, w.HeartRate.AvgHRPercent,
					w.HeartRate.PeakHR, w.HeartRate.PeakHRPercent)
			}
			if w.TreadmillData != nil && w.TreadmillData.TotalDistance.DisplayValue != "" {
				fmt.Printf("   Treadmill: %s %s\n",
					w.TreadmillData.TotalDistance.DisplayValue,
					w.TreadmillData.TotalDistance.DisplayUnit)
			}
			if w.RowerData != nil && w.RowerData.TotalDistance.DisplayValue != "" {
				fmt.Printf("   Rower: %s %s\n",
					w.RowerData.TotalDistance.DisplayValue,
					w.RowerData.TotalDistance.DisplayUnit)
			}
			fmt.Printf("   Time: %s\n", formatTime(classTime, config))
			fmt.Println()
		}
	},
}

// Helper to pad or truncate a string to a fixed width
func padOrTruncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) > width {
		return string(runes[:width])
	} else if len(runes) < width {
		return s + strings.Repeat(" ", width-len(runes))
	}
	return s
}

// getConfigPath determines the path for the configuration file.
func getConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	cliConfigDir := filepath.Join(configDir, cliDirName)
	if err := os.MkdirAll(cliConfigDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create cli config directory %s: %w", cliConfigDir, err)
	}
	return filepath.Join(cliConfigDir, configFileName), nil
}

// loadConfig loads the CLI configuration from the config file.
func loadConfig() (CLIConfig, error) {
	var config CLIConfig
	configFilePath, err := getConfigPath()
	if err != nil {
		return config, err
	}

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, fmt.Errorf("failed to read config file %s: %w", configFilePath, err)
	}

	if err := json.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to unmarshal config data from %s: %w", configFilePath, err)
	}
	return config, nil
}

// saveConfig saves the CLI configuration to the config file.
func saveConfig(config CLIConfig) error {
	configFilePath, err := getConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config to JSON: %w", err)
	}

	if err := os.WriteFile(configFilePath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", configFilePath, err)
	}
	return nil
}

// formatTime formats a time.Time value according to the configured timezone
func formatTime(t time.Time, config CLIConfig) string {
	if config.Timezone == "" {
		return t.Format("3:04 PM MST")
	}

	loc, err := time.LoadLocation(config.Timezone)
	if err != nil {
		log.Printf("Warning: Invalid timezone %s, using local timezone: %v", config.Timezone, err)
		return t.Format("3:04 PM MST")
	}

	return t.In(loc).Format("3:04 PM MST")
}

func init() {
	rootCmd.AddCommand(schedulesCmd)
	schedulesCmd.Flags().StringVar(&studioIDs, "studio-ids", "", "Comma-separated list of studio IDs (optional if preferred studios are configured)")

	rootCmd.AddCommand(bookingsCmd)
	bookingsCmd.AddCommand(listBookingsCmd)
	bookingsCmd.AddCommand(cancelBookingCmd)

	rootCmd.AddCommand(workoutsCmd)
	workoutsCmd.Flags().IntVar(&workoutDays, "days", 30, "How many days back to fetch workouts for")

	rootCmd.AddCommand(configureCmd)
	configureCmd.AddCommand(configureStudiosCmd)
	configureCmd.AddCommand(configureTimezoneCmd)
}

func main() {
	// Load .env file. Errors are ignored if .env doesn't exist.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI '%s'", err)
		os.Exit(1)
	}
}
